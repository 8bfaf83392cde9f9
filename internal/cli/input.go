package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	garmentag "github.com/anatolykoptev/go-garmentag"
)

const (
	ExitSuccess           = 0
	ExitFailure           = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
)

// Environment variables consulted when the matching flag is not given.
const (
	EnvInputDir   = "GARMENTAG_INPUT_DIR"
	EnvOracleURL  = "GARMENTAG_ORACLE_URL"
	EnvOracleCmd  = "GARMENTAG_ORACLE_CMD"
	EnvExtensions = "GARMENTAG_EXTENSIONS"
	EnvLogFile    = "GARMENTAG_LOG_FILE"
	EnvLogLevel   = "GARMENTAG_LOG_LEVEL"
)

// Invocation is the parsed command line.
type Invocation struct {
	ImagePath  string   // single image mode when set
	InputDir   string   `validate:"required_without=ImagePath"`
	OracleURL  string   `validate:"omitempty,url"`
	OracleCmd  string   `validate:"omitempty,excluded_with=OracleURL"`
	Extensions []string `validate:"min=1,dive,startswith=."`
	Memo       bool
	Strict     bool
	LogFile    string
	LogLevel   string `validate:"oneof=debug info warn error"`
}

// SingleImage reports whether the invocation targets one file.
func (inv Invocation) SingleImage() bool { return inv.ImagePath != "" }

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...)}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseInvocation parses flags, falling back to getenv for anything the
// flags leave unset.
func ParseInvocation(args []string, getenv func(string) string) (Invocation, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	flags := flag.NewFlagSet("garmentag", flag.ContinueOnError)
	flags.SetOutput(io.Discard) // parsing errors are returned, not printed

	inputDir := envOr(getenv, EnvInputDir, garmentag.DefaultInputDir)
	extensions := envOr(getenv, EnvExtensions, strings.Join(garmentag.DefaultExtensions, ","))

	var inv Invocation
	flags.StringVar(&inv.ImagePath, "image_path", "", "Single image to classify (optional).")
	flags.StringVar(&inv.InputDir, "input_dir", inputDir, "Directory containing images to classify.")
	flags.StringVar(&inv.OracleURL, "oracle_url", getenv(EnvOracleURL), "Pose estimation service endpoint.")
	flags.StringVar(&inv.OracleCmd, "oracle_cmd", getenv(EnvOracleCmd), "Pose worker command line (image on stdin, JSON on stdout).")
	flags.StringVar(&extensions, "extensions", extensions, "Comma separated image extensions for directory mode.")
	flags.BoolVar(&inv.Memo, "memo", false, "Reuse categories of byte-identical images within the run.")
	flags.BoolVar(&inv.Strict, "strict", false, "Exit non-zero when any image in a directory run fails.")
	flags.StringVar(&inv.LogFile, "log_file", getenv(EnvLogFile), "Also write logs to this file (rotated).")
	flags.StringVar(&inv.LogLevel, "log_level", envOr(getenv, EnvLogLevel, "warn"), "Log level: debug|info|warn|error.")

	if err := flags.Parse(args); err != nil {
		return Invocation{}, invalidInvocationf("%v", err)
	}
	if flags.NArg() != 0 {
		return Invocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(flags.Args(), " "))
	}

	inv.Extensions = parseExtensions(extensions)
	inv.LogLevel = strings.ToLower(strings.TrimSpace(inv.LogLevel))

	if err := validate.Struct(inv); err != nil {
		return Invocation{}, invalidInvocationf("%s", describeValidation(err))
	}
	if inv.OracleURL == "" && inv.OracleCmd == "" {
		return Invocation{}, configErrorf("no pose oracle: set -oracle_url or -oracle_cmd (or %s / %s)", EnvOracleURL, EnvOracleCmd)
	}
	return inv, nil
}

// LoadDotEnv seeds the process environment from path. A missing file is not
// an error; variables already set are left alone.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseExtensions(raw string) []string {
	var exts []string
	for _, e := range strings.Split(raw, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s (%s)", flagName(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// flagName maps an Invocation field to its flag.
func flagName(field string) string {
	field, _, _ = strings.Cut(field, "[")
	switch field {
	case "ImagePath":
		return "-image_path"
	case "InputDir":
		return "-input_dir"
	case "OracleURL":
		return "-oracle_url"
	case "OracleCmd":
		return "-oracle_cmd"
	case "Extensions":
		return "-extensions"
	case "LogLevel":
		return "-log_level"
	default:
		return field
	}
}
