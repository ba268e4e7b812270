// Package cmd implements the CLI application to administer a fund ledger.
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"
	fund "github.com/lignowhere/cnfund-sub001"
	"github.com/lignowhere/cnfund-sub001/gormstore"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Commands lists every subcommand of the application, in help order.
var Commands = []subcommands.Command{
	&investorAddCmd{},
	&investorsCmd{},
	&investorRmCmd{},
	&depositCmd{},
	&withdrawCmd{},
	&navCmd{},
	&txCmd{},
	&deleteCmd{},
	&undoCmd{},
	&feesPreviewCmd{},
	&feesApplyCmd{},
	&feesSimulateCmd{},
	&perfCmd{},
	&summaryCmd{},
}

// Configuration keys, settable in fundadm.yaml or as FUNDADM_* environment
// variables.
const (
	keyLedgerDir   = "ledger_dir"
	keyDatabaseURL = "database_url"
	keyCurrency    = "currency"
	keyFeeRate     = "fee_rate"
	keyPolicy      = "policy"
	keyPrecision   = "unit_precision"
	keyLockTimeout = "lock_timeout"
)

func init() {
	viper.SetConfigName("fundadm")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/fundadm")
	viper.SetEnvPrefix("fundadm")
	viper.AutomaticEnv()

	viper.SetDefault(keyLedgerDir, ".fund")
	viper.SetDefault(keyCurrency, fund.DefaultCurrency)
	viper.SetDefault(keyFeeRate, "0.2")
	viper.SetDefault(keyPolicy, "fifo")
	viper.SetDefault(keyPrecision, int(fund.DefaultUnitPrecision))
	viper.SetDefault(keyLockTimeout, "5s")

	// a missing config file just means defaults
	_ = viper.ReadInConfig()
}

// openEngine builds the engine from the configuration. A database_url selects
// the PostgreSQL backend, otherwise the ledger lives in ledger_dir as JSON
// Lines files.
func openEngine() (*fund.Engine, error) {
	cfg, err := engineConfig()
	if err != nil {
		return nil, err
	}

	var store fund.Store
	if dsn := viper.GetString(keyDatabaseURL); dsn != "" {
		store, err = gormstore.Open(dsn)
	} else {
		store, err = fund.NewFileStore(viper.GetString(keyLedgerDir))
	}
	if err != nil {
		return nil, err
	}
	return fund.NewEngine(store, cfg), nil
}

func engineConfig() (fund.Config, error) {
	var cfg fund.Config

	cfg.Currency = strings.ToUpper(viper.GetString(keyCurrency))

	rate, err := decimal.NewFromString(viper.GetString(keyFeeRate))
	if err != nil {
		return cfg, fmt.Errorf("invalid fee_rate %q: %w", viper.GetString(keyFeeRate), err)
	}
	cfg.FeeRate = rate

	policy, err := fund.ParseSelectionPolicy(viper.GetString(keyPolicy))
	if err != nil {
		return cfg, err
	}
	cfg.Policy = policy

	cfg.UnitPrecision = int32(viper.GetInt(keyPrecision))

	timeout, err := time.ParseDuration(viper.GetString(keyLockTimeout))
	if err != nil {
		return cfg, fmt.Errorf("invalid lock_timeout %q: %w", viper.GetString(keyLockTimeout), err)
	}
	cfg.LockTimeout = timeout

	return cfg, nil
}

// parseMoney parses a decimal amount in the fund currency.
func parseMoney(s string) (fund.Money, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, "_", ""))
	if err != nil {
		return fund.Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return fund.M(d, strings.ToUpper(viper.GetString(keyCurrency))), nil
}

// parseDay parses a date flag, defaulting to today when empty.
func parseDay(s string) (fund.Date, error) {
	if s == "" {
		return fund.Today(), nil
	}
	return fund.ParseDate(s)
}
