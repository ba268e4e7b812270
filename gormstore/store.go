// Package gormstore persists the fund ledger in PostgreSQL through GORM.
package gormstore

import (
	"fmt"
	"time"

	fund "github.com/lignowhere/cnfund-sub001"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store implements fund.Store on top of a PostgreSQL database. Apply runs in
// a single database transaction, so a batch commits whole or not at all.
type Store struct {
	db  *gorm.DB
	log *logrus.Entry
}

var _ fund.Store = (*Store)(nil)

// Open connects to the database, migrates the schema and returns the store.
func Open(dsn string) (*Store, error) {
	log := logrus.WithField("component", "gormstore")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&investorRow{}, &transactionRow{}, &trancheRow{}, &feeRecordRow{}); err != nil {
		return nil, fmt.Errorf("cannot migrate schema: %w", err)
	}

	log.Debug("database ready")
	return &Store{db: db, log: log}, nil
}

func errUnknownKind(kind string) error {
	return fmt.Errorf("unknown transaction kind %q in database", kind)
}

func (s *Store) LoadInvestors() ([]*fund.Investor, error) {
	var rows []investorRow
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*fund.Investor, 0, len(rows))
	for _, r := range rows {
		inv, err := r.investor()
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func (s *Store) LoadTransactions() ([]fund.Transaction, error) {
	var rows []transactionRow
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]fund.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) LoadTranches() ([]*fund.Tranche, error) {
	var rows []trancheRow
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*fund.Tranche, 0, len(rows))
	for _, r := range rows {
		t, err := r.tranche()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) LoadFeeRecords() ([]fund.FeeRecord, error) {
	var rows []feeRecordRow
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]fund.FeeRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.feeRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) SaveInvestor(inv *fund.Investor) error {
	row := newInvestorRow(inv)
	if err := s.db.Save(&row).Error; err != nil {
		return err
	}
	inv.ID = row.ID
	return nil
}

func (s *Store) DeleteInvestor(id int64) error {
	res := s.db.Delete(&investorRow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("investor %d not found", id)
	}
	return nil
}

func (s *Store) Apply(c *fund.Change) error {
	if c.IsZero() {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, t := range c.AddTransactions {
			row := newTransactionRow(t)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, t := range c.UpdateTransactions {
			row := newTransactionRow(t)
			res := tx.Save(&row)
			if res.Error != nil {
				return res.Error
			}
		}
		if len(c.RemoveTransactionIDs) > 0 {
			res := tx.Delete(&transactionRow{}, c.RemoveTransactionIDs)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != int64(len(c.RemoveTransactionIDs)) {
				return fmt.Errorf("removed %d of %d transactions", res.RowsAffected, len(c.RemoveTransactionIDs))
			}
		}
		if c.ReplaceAllTranches {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&trancheRow{}).Error; err != nil {
				return err
			}
		}
		for _, t := range c.UpsertTranches {
			row := newTrancheRow(t)
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		for _, rec := range c.AddFeeRecords {
			row := newFeeRecordRow(rec)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).Error("change rolled back")
		return err
	}
	return nil
}
