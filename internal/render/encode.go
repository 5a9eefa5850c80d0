package render

import (
	"encoding/json"
	"io"

	"codeberg.org/mutker/devicectl/internal/errors"
	toml "github.com/pelletier/go-toml/v2"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

const ErrUnknownFormat = errors.ErrorCode("render_unknown_format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatTOML:
		return f, nil
	default:
		return "", errors.New().WithData(ErrUnknownFormat, s)
	}
}

// Write renders v to w in the given format. Text output needs a Snapshot or
// a []metrics.Sample; other values are rejected.
func Write(w io.Writer, format Format, v any) error {
	errFactory := errors.New()

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errFactory.Wrap(errors.ErrRenderOutput, err)
		}
		return nil
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		if err := enc.Encode(v); err != nil {
			return errFactory.Wrap(errors.ErrRenderOutput, err)
		}
		return nil
	case FormatText:
		text, err := textFor(v)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, text+"\n"); err != nil {
			return errFactory.Wrap(errors.ErrRenderOutput, err)
		}
		return nil
	default:
		return errFactory.WithData(ErrUnknownFormat, string(format))
	}
}
