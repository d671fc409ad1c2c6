package sources

import (
	"context"
	"fmt"
	"time"
)

// PokemonTCGMetadataSource is the slower-cadence metadata capability:
// canonical card ids, regulation marks, set release dates.
type PokemonTCGMetadataSource struct {
	client  *HTTPClient
	apiKey  string
	baseURL string
}

func NewPokemonTCGMetadataSource(apiKey, baseURL string) *PokemonTCGMetadataSource {
	if baseURL == "" {
		baseURL = "https://api.pokemontcg.io/v2"
	}
	return &PokemonTCGMetadataSource{client: NewHTTPClient("METADATA"), apiKey: apiKey, baseURL: baseURL}
}

type tcgLegalitiesPayload struct {
	Standard string `json:"standard"`
}

type tcgCardPayload struct {
	Data struct {
		ID             string               `json:"id"`
		Name           string               `json:"name"`
		Set            struct{ ID string `json:"id"` } `json:"set"`
		RegulationMark string               `json:"regulationMark"`
		Legalities     tcgLegalitiesPayload `json:"legalities"`
		TCGPlayer      struct{ URL string `json:"url"` } `json:"tcgplayer"`
		Cardmarket     struct{ URL string `json:"url"` } `json:"cardmarket"`
	} `json:"data"`
}

func (s *PokemonTCGMetadataSource) FetchCard(ctx context.Context, cardID string) (*CardMetadata, error) {
	var payload tcgCardPayload
	url := fmt.Sprintf("%s/cards/%s", s.baseURL, cardID)
	if err := s.client.GetJSON(ctx, url, s.authHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("fetch card metadata %s: %w", cardID, err)
	}
	d := payload.Data
	return &CardMetadata{
		CardID:           d.ID,
		Name:             d.Name,
		SetCode:          d.Set.ID,
		RegulationMark:   d.RegulationMark,
		LegalityStandard: d.Legalities.Standard,
		DeepLinkURLs: map[string]string{
			"tcgplayer":  d.TCGPlayer.URL,
			"cardmarket": d.Cardmarket.URL,
		},
	}, nil
}

type tcgSetCardsPayload struct {
	Data []tcgCardPayload `json:"data"`
}

func (s *PokemonTCGMetadataSource) FetchSet(ctx context.Context, setCode string) ([]CardMetadata, error) {
	var payload struct {
		Data []struct {
			ID             string               `json:"id"`
			Name           string               `json:"name"`
			RegulationMark string               `json:"regulationMark"`
			Legalities     tcgLegalitiesPayload `json:"legalities"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/cards?q=set.id:%s", s.baseURL, setCode)
	if err := s.client.GetJSON(ctx, url, s.authHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("fetch set metadata %s: %w", setCode, err)
	}
	out := make([]CardMetadata, 0, len(payload.Data))
	for _, c := range payload.Data {
		out = append(out, CardMetadata{
			CardID: c.ID, Name: c.Name, SetCode: setCode, RegulationMark: c.RegulationMark,
			LegalityStandard: c.Legalities.Standard,
			DeepLinkURLs:     map[string]string{},
		})
	}
	return out, nil
}

type tcgSetInfoPayload struct {
	Data struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ReleaseDate string `json:"releaseDate"`
	} `json:"data"`
}

func (s *PokemonTCGMetadataSource) FetchSetInfo(ctx context.Context, setCode string) (*SetInfo, error) {
	var payload tcgSetInfoPayload
	url := fmt.Sprintf("%s/sets/%s", s.baseURL, setCode)
	if err := s.client.GetJSON(ctx, url, s.authHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("fetch set info %s: %w", setCode, err)
	}
	released, err := time.Parse("2006/01/02", payload.Data.ReleaseDate)
	if err != nil {
		released, err = time.Parse("2006-01-02", payload.Data.ReleaseDate)
	}
	if err != nil {
		return nil, fmt.Errorf("parse set release date %q: %w", payload.Data.ReleaseDate, err)
	}
	return &SetInfo{
		SetCode:     payload.Data.ID,
		SetName:     payload.Data.Name,
		ReleaseDate: released,
	}, nil
}

func (s *PokemonTCGMetadataSource) authHeaders() map[string]string {
	if s.apiKey == "" {
		return nil
	}
	return map[string]string{"X-Api-Key": s.apiKey}
}
