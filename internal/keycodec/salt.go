package keycodec

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/goodocy/android-store/internal/store"
)

// MetaBucket holds per-database metadata and must not be used for records.
const MetaBucket = "meta"

var (
	metaBucket     = []byte(MetaBucket)
	installationID = []byte("installation_id")
)

// InstallationSalt returns the per-database salt used to derive codec keys.
// The first call on a fresh store generates a random UUID and persists it.
// A database copied elsewhere keeps its salt; a fresh one gets a new salt,
// so obfuscated keys are not portable between installs. Concurrent first
// calls agree on one id.
func InstallationSalt(st store.Store) ([]byte, error) {
	candidate := uuid.NewString()
	v, err := st.GetOrSet(metaBucket, installationID, []byte(candidate))
	if err != nil {
		return nil, fmt.Errorf("loading installation id: %w", err)
	}
	id, err := uuid.ParseBytes(v)
	if err != nil {
		return nil, fmt.Errorf("corrupt installation id %q: %w", v, err)
	}
	if string(v) == candidate {
		logger.Info("generated installation id", "id", candidate)
	}
	return id[:], nil
}
