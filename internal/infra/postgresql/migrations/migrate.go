package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/winback-engine/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createLeadsTable(),
		createSequenceTables(),
		createAttemptsTable(),
		createTasksTable(),
		createJobRunLogsTable(),
	})

	return m.Migrate()
}

func createLeadsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_leads",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.LeadModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_leads_winback_eligibility ON leads (status, winback_stage, lost_date) WHERE lost_date IS NOT NULL`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.LeadModel{})
		},
	}
}

func createSequenceTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_winback_sequences",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.WinbackSequenceModel{}, &repository.SequenceStepModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_sequence_steps_order ON winback_sequence_steps (sequence_id, step_index)`,
				// At most one sequence may carry the default flag.
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_sequences_default ON winback_sequences (is_default) WHERE is_default`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SequenceStepModel{}, &repository.WinbackSequenceModel{})
		},
	}
}

func createAttemptsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_winback_attempts",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.WinbackAttemptModel{}); err != nil {
				return err
			}
			indexes := []string{
				// One attempt per lead and sequence step; rejects double enrollment.
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_attempts_lead_step ON winback_attempts (lead_id, sequence_id, step_index)`,
				`CREATE INDEX IF NOT EXISTS idx_attempts_due ON winback_attempts (scheduled_date) WHERE status = 'PENDING' AND executed_date IS NULL`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.WinbackAttemptModel{})
		},
	}
}

func createTasksTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_lead_tasks",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.LeadTaskModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_lead_tasks_lead_status ON lead_tasks (lead_id, status)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.LeadTaskModel{})
		},
	}
}

func createJobRunLogsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000005_create_job_run_logs",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.JobRunModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_job_run_logs_job_date ON job_run_logs (job_name, run_date)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.JobRunModel{})
		},
	}
}
