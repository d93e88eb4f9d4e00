package vault

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/jobcoach/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/jobcoach/internal/common"
	"github.com/dmitrijs2005/jobcoach/internal/cryptox"
	"github.com/dmitrijs2005/jobcoach/internal/filex"
)

// DeviceSecretFile is the name of the per-device secret inside the secure dir.
const DeviceSecretFile = "device.key"

// LoadDeviceKey derives the vault key from the device secret in secureDir
// (created on first use) and the installation id stored in repo.
func LoadDeviceKey(ctx context.Context, secureDir string, repo metadata.Repository) ([]byte, error) {
	dir, err := filex.EnsureDir(secureDir, 0o700)
	if err != nil {
		return nil, &VaultError{Op: "key", Err: err}
	}

	secret, err := filex.ReadOrCreateSecret(filepath.Join(dir, DeviceSecretFile), cryptox.KeySize, common.GenerateRandByteArray)
	if err != nil {
		return nil, &VaultError{Op: "key", Err: err}
	}
	defer common.WipeByteArray(secret)

	deviceID, err := metadata.DeviceID(ctx, repo)
	if err != nil {
		return nil, &VaultError{Op: "key", Err: fmt.Errorf("device id: %w", err)}
	}

	return cryptox.DeriveKey(secret, []byte(deviceID)), nil
}
