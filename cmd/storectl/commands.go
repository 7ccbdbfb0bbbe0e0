package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/goodocy/android-store/internal/config"
	"github.com/goodocy/android-store/internal/keycodec"
	"github.com/goodocy/android-store/internal/ownership"
	"github.com/goodocy/android-store/internal/store"
)

const commandHelp = `Commands:
  exists <item>        report whether the item is owned
  grant <item>...      mark items as owned
  revoke <item>...     mark items as not owned
  list                 list owned items
`

var errUsage = errors.New("usage")

// buildCodec returns the configured key codec. The secret comes from the
// config, or from prompt when the config has none. Without a pinned salt
// the store's installation id is used.
func buildCodec(cfg *config.Config, st store.Store, prompt func() ([]byte, error)) (keycodec.Codec, error) {
	if !cfg.CodecEnabled() {
		return keycodec.Plain{}, nil
	}
	secret, err := cfg.LoadSecret()
	if err != nil {
		return nil, err
	}
	if secret == nil {
		if secret, err = prompt(); err != nil {
			return nil, err
		}
	}

	var salt []byte
	if cfg.Codec.Salt != "" {
		salt = []byte(cfg.Codec.Salt)
	} else if salt, err = keycodec.InstallationSalt(st); err != nil {
		return nil, err
	}
	return keycodec.New(cfg.Codec.Mode, secret, salt)
}

func run(owners *ownership.Store, args []string, w io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command", errUsage)
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "exists":
		if len(rest) != 1 {
			return fmt.Errorf("%w: exists <item>", errUsage)
		}
		owned, err := owners.Exists(rest[0])
		if err != nil {
			return err
		}
		state := "not owned"
		if owned {
			state = "owned"
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", rest[0], state)

	case "grant", "revoke":
		if len(rest) == 0 {
			return fmt.Errorf("%w: %s <item>...", errUsage, cmd)
		}
		apply, verb := owners.Grant, "granted"
		if cmd == "revoke" {
			apply, verb = owners.Revoke, "revoked"
		}
		for _, item := range rest {
			if err := apply(item); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(w, "%s %s\n", verb, item)
		}

	case "list":
		if len(rest) != 0 {
			return fmt.Errorf("%w: list takes no arguments", errUsage)
		}
		owned, err := owners.Owned()
		if err != nil {
			return err
		}
		if len(owned) == 0 {
			_, _ = fmt.Fprintln(w, "Owned: (none)")
			return nil
		}
		_, _ = fmt.Fprintf(w, "Owned (%d items):\n", len(owned))
		for _, o := range owned {
			name := o.Identity
			if name == "" {
				name = "(key " + o.Key + ")"
			}
			_, _ = fmt.Fprintf(w, "  %-32s %s\n", name, o.ChangedAt.UTC().Format("2006-01-02 15:04:05Z"))
		}

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}
