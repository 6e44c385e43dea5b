package config

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flatepack/pack/flate"
	"github.com/flatepack/pack/gzip"
)

const (
	EnvVarPrefix = "GZPACK"

	DefaultConfigFile = "gzpack.toml"
	DefaultLogLevel   = "info"
	DefaultMethod     = "auto"
	DefaultOS         = gzip.OSUnix
	DefaultStoreName  = true

	MinOS = 0
	MaxOS = 255
)

var (
	// VERSION gets set during build
	VERSION = "0.0.0"
)

type Config struct {
	CLI  *CLI
	TOML *TOML

	// Resolved from CLI, TOML and defaults
	Method   flate.Method
	LogLevel logrus.Level
}

type TOML struct {
	LogLevel string       `toml:"log_level"`
	Deflate  *TOMLDeflate `toml:"deflate"`
	Gzip     *TOMLGzip    `toml:"gzip"`
}

type TOMLDeflate struct {
	Method string `toml:"method"`
}

type TOMLGzip struct {
	StoreName *bool  `toml:"store_name"`
	OS        *int   `toml:"os"`
	Comment   string `toml:"comment"`
}

type CLI struct {
	File       string `kong:"arg,optional,default='-',help='File to compress or decompress (- for stdin)'"`
	Decompress bool   `kong:"help='Decompress instead of compressing',short='d'"`
	Stdout     bool   `kong:"help='Write to stdout and keep the input file',short='c'"`
	Keep       bool   `kong:"help='Keep the input file',short='k'"`
	Method     string `kong:"help='Block encoding: auto, stored, fixed or dynamic',short='m'"`
	Trace      bool   `kong:"help='Print the LZ77 element stream instead of compressing',short='t'"`
	ConfigFile string `kong:"help='Path to the TOML config file',name='config',default='gzpack.toml'"`

	Debug   bool             `kong:"help='Enable debug output',short='D'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`

	// Internal bits
	Ctx *kong.Context `kong:"-"`
}

// NewConfig reads configuration from the command line, the environment
// (and .env), and the TOML config file, in that order of precedence.
func NewConfig() (*Config, error) {
	return New(os.Args[1:])
}

// New is NewConfig with explicit command-line arguments.
func New(args []string) (*Config, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	cli, err := readCLIArgs(args)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing CLI args")
	}

	tomlConfig, err := readTOML(cli.ConfigFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	cfg := &Config{
		CLI:  cli,
		TOML: tomlConfig,
	}

	if err := resolve(cfg); err != nil {
		return nil, errors.Wrap(err, "error validating config")
	}

	return cfg, nil
}

// StoreName reports whether the original file name goes in the gzip header.
func (c *Config) StoreName() bool {
	return *c.TOML.Gzip.StoreName
}

// OS returns the operating system ID for the gzip header.
func (c *Config) OS() byte {
	return byte(*c.TOML.Gzip.OS)
}

func resolve(c *Config) error {
	method := c.TOML.Deflate.Method
	if c.CLI.Method != "" {
		method = c.CLI.Method
	}

	m, err := flate.ParseMethod(method)
	if err != nil {
		return errors.Wrap(err, "deflate.method")
	}
	c.Method = m

	if c.CLI.Debug {
		c.LogLevel = logrus.DebugLevel
		return nil
	}

	level, err := logrus.ParseLevel(c.TOML.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log_level")
	}
	c.LogLevel = level

	return nil
}

func setTOMLDefaults(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if t.Deflate == nil {
		t.Deflate = &TOMLDeflate{}
	}

	if t.Gzip == nil {
		t.Gzip = &TOMLGzip{}
	}

	if t.LogLevel == "" {
		t.LogLevel = DefaultLogLevel
	}

	if t.Deflate.Method == "" {
		t.Deflate.Method = DefaultMethod
	}

	if t.Gzip.StoreName == nil {
		storeName := DefaultStoreName
		t.Gzip.StoreName = &storeName
	}

	if t.Gzip.OS == nil {
		osID := DefaultOS
		t.Gzip.OS = &osID
	}

	return nil
}

func validateTOML(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if _, err := flate.ParseMethod(t.Deflate.Method); err != nil {
		return errors.Wrap(err, "deflate.method")
	}

	if *t.Gzip.OS < MinOS || *t.Gzip.OS > MaxOS {
		return errors.Errorf("gzip.os must be between %d and %d", MinOS, MaxOS)
	}

	if _, err := logrus.ParseLevel(t.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}

	return nil
}

func readCLIArgs(args []string) (*CLI, error) {
	cli := &CLI{}

	parser, err := kong.New(cli,
		kong.Name("gzpack"),
		kong.Description("Compress or decompress files in gzip format"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version": VERSION,
		})
	if err != nil {
		return nil, errors.Wrap(err, "error building CLI parser")
	}

	if cli.Ctx, err = parser.Parse(args); err != nil {
		return nil, err
	}

	if err := validateCLIArgs(cli); err != nil {
		return nil, errors.Wrap(err, "error validating args")
	}

	return cli, nil
}

// readTOML loads the config file. A missing file leaves every setting at
// its default.
func readTOML(file string) (*TOML, error) {
	tomlConfig := &TOML{}

	data, err := os.ReadFile(file)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.Wrap(err, "error reading file")
	default:
		if err := toml.Unmarshal(data, tomlConfig); err != nil {
			return nil, errors.Wrap(err, "error parsing TOML config")
		}
	}

	// Set defaults
	if err := setTOMLDefaults(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error setting TOML defaults")
	}

	// Validate loaded config
	if err := validateTOML(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error validating TOML config")
	}

	return tomlConfig, nil
}

func validateCLIArgs(cli *CLI) error {
	if cli == nil {
		return errors.New("config cannot be nil")
	}

	if cli.Method != "" {
		if _, err := flate.ParseMethod(cli.Method); err != nil {
			return errors.Wrap(err, "--method")
		}
	}

	if cli.Trace && cli.Decompress {
		return errors.New("--trace and --decompress cannot be combined")
	}

	return nil
}
