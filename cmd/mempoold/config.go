// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/r3e-network/neo-rs-sub003/internal/eventsink"
	mlog "github.com/r3e-network/neo-rs-sub003/internal/log"
	"github.com/r3e-network/neo-rs-sub003/internal/version"
	"github.com/r3e-network/neo-rs-sub003/ledger"
	"github.com/r3e-network/neo-rs-sub003/mempool"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "mempoold.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "mempoold.log"
	defaultSyncMode       = "defer"
)

var (
	defaultHomeDir    = appDataDir("mempoold")
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(defaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
)

// syncModes maps the accepted --syncmode values to pool sync modes.
var syncModes = map[string]mempool.SyncMode{
	"defer":     mempool.SyncDefer,
	"immediate": mempool.SyncImmediateReverify,
	"bounded":   mempool.SyncBoundedReverify,
}

// config defines the configuration options for mempoold.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion           bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile            string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir               string        `short:"b" long:"datadir" description:"Directory to store the ledger"`
	LogDir                string        `long:"logdir" description:"Directory to log output"`
	DbType                string        `long:"dbtype" description:"Database backend to use for the ledger"`
	DebugLevel            string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	Replay                string        `long:"replay" description:"Replay the operations in the passed JSON lines file (- for stdin) and exit"`
	NATSURL               string        `long:"natsurl" description:"Publish pool events to the NATS server at this URL"`
	NATSSubject           string        `long:"natssubject" description:"Subject prefix for published pool events"`
	SyncMode              string        `long:"syncmode" description:"What to do with surviving transactions after a block {defer, immediate, bounded}"`
	MaxTx                 int           `long:"maxtx" description:"Maximum number of pooled transactions"`
	MaxTxPerBlock         int           `long:"maxtxperblock" description:"Maximum number of transactions per block"`
	TimePerBlock          time.Duration `long:"timeperblock" description:"Target block interval"`
	BlocksTillRebroadcast int           `long:"blockstillrebroadcast" description:"Block intervals before a reverified transaction is relayed again"`

	syncMode mempool.SyncMode
}

// appDataDir returns the default home directory of the named application.
func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	switch runtime.GOOS {
	case "windows", "darwin":
		return filepath.Join(home, strings.ToUpper(appName[:1])+appName[1:])
	default:
		return filepath.Join(home, "."+appName)
	}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// validDbType returns whether or not dbType is a supported database type.
func validDbType(dbType string) bool {
	for _, knownType := range ledger.SupportedDbTypes {
		if dbType == knownType {
			return true
		}
	}
	return false
}

// errShowSubsystems is returned by parseAndSetDebugLevels when the caller
// asked for the subsystem list instead of a level.
var errShowSubsystems = errors.New("show subsystems")

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	if debugLevel == "show" {
		return errShowSubsystems
	}

	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !mlog.ValidLogLevel(debugLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		mlog.SetLogLevels(debugLevel)
		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "the specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := mlog.SubsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsystems %v"
			return fmt.Errorf(str, subsysID, mlog.SupportedSubsystems())
		}

		// Validate log level.
		if !mlog.ValidLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		mlog.SetLogLevel(subsysID, logLevel)
	}

	return nil
}

// policy returns the pool policy the configuration describes.
func (cfg *config) policy() mempool.Policy {
	policy := mempool.DefaultPolicy()
	policy.MaxTransactions = cfg.MaxTx
	policy.MaxTransactionsPerBlock = cfg.MaxTxPerBlock
	policy.TimePerBlock = cfg.TimePerBlock
	policy.BlocksTillRebroadcast = cfg.BlocksTillRebroadcast
	return policy
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in mempoold functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig(args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile:            defaultConfigFile,
		DataDir:               defaultDataDir,
		LogDir:                defaultLogDir,
		DbType:                ledger.DefaultDbType,
		DebugLevel:            defaultLogLevel,
		NATSSubject:           eventsink.DefaultSubject,
		SyncMode:              defaultSyncMode,
		MaxTx:                 mempool.DefaultMaxTransactions,
		MaxTxPerBlock:         mempool.DefaultMaxTransactionsPerBlock,
		TimePerBlock:          mempool.DefaultTimePerBlock,
		BlocksTillRebroadcast: mempool.DefaultBlocksTillRebroadcast,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			preParser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.String())
		os.Exit(0)
	}

	// Load additional config from file.  A missing default config file is
	// not an error.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n", err)
			parser.WriteHelp(os.Stderr)
			return nil, nil, err
		}
		if preCfg.ConfigFile != defaultConfigFile {
			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	funcName := "loadConfig"
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	if cfg.Replay != "" && cfg.Replay != "-" {
		cfg.Replay = cleanAndExpandPath(cfg.Replay)
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", mlog.SupportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %v", funcName, err.Error())
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Validate database type.
	if !validDbType(cfg.DbType) {
		str := "%s: The specified database type [%v] is invalid -- " +
			"supported types %v"
		err := fmt.Errorf(str, funcName, cfg.DbType, ledger.SupportedDbTypes)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Validate the sync mode.
	mode, ok := syncModes[cfg.SyncMode]
	if !ok {
		str := "%s: The specified sync mode [%v] is invalid -- " +
			"supported modes {defer, immediate, bounded}"
		err := fmt.Errorf(str, funcName, cfg.SyncMode)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}
	cfg.syncMode = mode

	// Validate the pool policy.
	policy := cfg.policy()
	if err := policy.Validate(); err != nil {
		err := fmt.Errorf("%s: %v", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
