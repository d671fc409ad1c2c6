package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tcgradar/signal-engine/internal/logger"
)

// CreateUser inserts a new identity root. Users are admin-created, never
// self-registered, so there is no signup path in this package.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, active, created_at)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Email, u.Active, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, active, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Active, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListActiveUsers returns every user the orchestrator should scan signals
// for (active flag set).
func (s *Store) ListActiveUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, active, created_at FROM users WHERE active = TRUE
	`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Active, &u.CreatedAt); err != nil {
			logger.Warn("STORE", "scan user row failed", logger.F("err", err.Error()))
			continue
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetUserProfile fetches a user's profile, or nil if none exists.
func (s *Store) GetUserProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	var p UserProfile
	p.UserID = userID
	err := s.pool.QueryRow(ctx, `
		SELECT country, seller_level, marketplaces, subscription_tier,
		       min_profit_threshold, min_headache_tier, category_filter,
		       display_currency, customs_duty_override,
		       forwarder_receiving_fee, forwarder_consolidation_fee,
		       forwarder_insurance_rate, forwarder_enabled, chat_channel_ids
		  FROM user_profiles WHERE user_id = $1
	`, userID).Scan(
		&p.Country, &p.SellerLevel, &p.Marketplaces, &p.SubscriptionTier,
		&p.MinProfitThreshold, &p.MinHeadacheTier, &p.CategoryFilter,
		&p.DisplayCurrency, &p.CustomsDutyOverride,
		&p.ForwarderReceivingFee, &p.ForwarderConsolidationFee,
		&p.ForwarderInsuranceRate, &p.ForwarderEnabled, &p.ChatChannelIDs,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return &p, nil
}

// UpsertUserProfile creates or replaces a user's profile in one statement.
func (s *Store) UpsertUserProfile(ctx context.Context, p UserProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_profiles (
			user_id, country, seller_level, marketplaces, subscription_tier,
			min_profit_threshold, min_headache_tier, category_filter,
			display_currency, customs_duty_override,
			forwarder_receiving_fee, forwarder_consolidation_fee,
			forwarder_insurance_rate, forwarder_enabled, chat_channel_ids
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (user_id) DO UPDATE SET
			country = EXCLUDED.country,
			seller_level = EXCLUDED.seller_level,
			marketplaces = EXCLUDED.marketplaces,
			subscription_tier = EXCLUDED.subscription_tier,
			min_profit_threshold = EXCLUDED.min_profit_threshold,
			min_headache_tier = EXCLUDED.min_headache_tier,
			category_filter = EXCLUDED.category_filter,
			display_currency = EXCLUDED.display_currency,
			customs_duty_override = EXCLUDED.customs_duty_override,
			forwarder_receiving_fee = EXCLUDED.forwarder_receiving_fee,
			forwarder_consolidation_fee = EXCLUDED.forwarder_consolidation_fee,
			forwarder_insurance_rate = EXCLUDED.forwarder_insurance_rate,
			forwarder_enabled = EXCLUDED.forwarder_enabled,
			chat_channel_ids = EXCLUDED.chat_channel_ids
	`,
		p.UserID, p.Country, p.SellerLevel, p.Marketplaces, p.SubscriptionTier,
		p.MinProfitThreshold, p.MinHeadacheTier, p.CategoryFilter,
		p.DisplayCurrency, p.CustomsDutyOverride,
		p.ForwarderReceivingFee, p.ForwarderConsolidationFee,
		p.ForwarderInsuranceRate, p.ForwarderEnabled, p.ChatChannelIDs,
	)
	if err != nil {
		return fmt.Errorf("upsert user profile: %w", err)
	}
	return nil
}
