package repos

import (
	"github.com/jmoiron/sqlx"

	"tajimart/internal/domain"
)

type ThresholdRepo struct{ db *sqlx.DB }

func NewThresholdRepo(db *sqlx.DB) *ThresholdRepo { return &ThresholdRepo{db: db} }

type thresholdRow struct {
	BronzeStandard     int64  `db:"bronze_standard"`
	BronzeEarly        int64  `db:"bronze_early"`
	SilverStandard     int64  `db:"silver_standard"`
	SilverEarly        int64  `db:"silver_early"`
	GoldStandard       int64  `db:"gold_standard"`
	GoldEarly          int64  `db:"gold_early"`
	PlatinumStandard   int64  `db:"platinum_standard"`
	PlatinumEarly      int64  `db:"platinum_early"`
	EarlyAccessEnabled bool   `db:"early_access_enabled"`
	UpdatedBy          string `db:"updated_by"`
	Notes              string `db:"notes"`
	CreatedAt          string `db:"created_at"`
}

// Latest returns the active ladder: the newest revision row. Quotes read this
// fresh on every request.
func (r *ThresholdRepo) Latest() (domain.TierThresholdConfig, error) {
	var row thresholdRow
	err := r.db.Get(&row, `
		SELECT bronze_standard, bronze_early,
		       silver_standard, silver_early,
		       gold_standard, gold_early,
		       platinum_standard, platinum_early,
		       early_access_enabled,
		       COALESCE(updated_by,'') AS updated_by,
		       COALESCE(notes,'') AS notes,
		       created_at
		FROM loyalty_thresholds
		ORDER BY id DESC
		LIMIT 1
	`)
	if err != nil {
		return domain.TierThresholdConfig{}, err
	}
	return domain.TierThresholdConfig{
		Bronze:             domain.TierThresholds{Standard: row.BronzeStandard, Early: row.BronzeEarly},
		Silver:             domain.TierThresholds{Standard: row.SilverStandard, Early: row.SilverEarly},
		Gold:               domain.TierThresholds{Standard: row.GoldStandard, Early: row.GoldEarly},
		Platinum:           domain.TierThresholds{Standard: row.PlatinumStandard, Early: row.PlatinumEarly},
		EarlyAccessEnabled: row.EarlyAccessEnabled,
	}, nil
}

// Insert appends a new revision. Old rows are kept for audit.
func (r *ThresholdRepo) Insert(cfg domain.TierThresholdConfig, updatedBy, notes string) error {
	_, err := r.db.Exec(`
		INSERT INTO loyalty_thresholds(
			bronze_standard, bronze_early,
			silver_standard, silver_early,
			gold_standard, gold_early,
			platinum_standard, platinum_early,
			early_access_enabled, updated_by, notes
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)
	`,
		cfg.Bronze.Standard, cfg.Bronze.Early,
		cfg.Silver.Standard, cfg.Silver.Early,
		cfg.Gold.Standard, cfg.Gold.Early,
		cfg.Platinum.Standard, cfg.Platinum.Early,
		cfg.EarlyAccessEnabled, updatedBy, notes,
	)
	return err
}
