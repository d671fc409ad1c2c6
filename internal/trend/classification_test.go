package trend

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassify_Matrix(t *testing.T) {
	tier1Floor := decimal.RequireFromString("1.5")
	fkThreshold := decimal.RequireFromString("-0.10")

	cases := []struct {
		name       string
		velocity   string
		trend      string
		wantClass  Classification
		wantSuppress bool
	}{
		{"high velocity falling price is liquidation", "1.5", "-0.10", ClassificationLiquidation, true},
		{"high velocity rising price is momentum", "2.0", "0.05", ClassificationMomentum, false},
		{"low velocity falling price is declining", "1.0", "-0.15", ClassificationDeclining, false},
		{"low velocity flat price is stable", "1.0", "0.00", ClassificationStable, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			class, suppress := Classify(decimal.RequireFromString(c.velocity), decimal.RequireFromString(c.trend), tier1Floor, fkThreshold)
			assert.Equal(t, c.wantClass, class)
			assert.Equal(t, c.wantSuppress, suppress)
		})
	}
}

func TestClassify_OnlyLiquidationSuppresses(t *testing.T) {
	tier1Floor := decimal.RequireFromString("1.5")
	fkThreshold := decimal.RequireFromString("-0.10")

	for _, v := range []string{"0.1", "1.0", "1.5", "5.0"} {
		for _, tr := range []string{"-1.0", "-0.10", "-0.05", "0", "0.5"} {
			class, suppress := Classify(decimal.RequireFromString(v), decimal.RequireFromString(tr), tier1Floor, fkThreshold)
			if suppress {
				assert.Equal(t, ClassificationLiquidation, class)
			}
		}
	}
}
