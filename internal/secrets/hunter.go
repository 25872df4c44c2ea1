package secrets

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"leadgen-engine/internal/config"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "leadgen"

// HunterKeyringAccount is scoped by API host so a staging endpoint can hold
// a different key.
func HunterKeyringAccount(cfg config.Config) string {
	host := "api.hunter.io"
	if u, err := url.Parse(cfg.Hunter.BaseURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
	}
	return "leadgen:hunter:" + host
}

func GetHunterKey(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	k, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(k), nil
}

func SetHunterKey(account, key string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, account, strings.TrimSpace(key))
}

func DeleteHunterKey(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ResolveHunterKey checks HUNTER_API_KEY, then the keychain, then the config
// file. Empty means no key anywhere.
func ResolveHunterKey(cfg config.Config) string {
	if k := strings.TrimSpace(os.Getenv("HUNTER_API_KEY")); k != "" {
		return k
	}
	if k, err := GetHunterKey(HunterKeyringAccount(cfg)); err == nil && k != "" {
		return k
	}
	return strings.TrimSpace(cfg.Hunter.APIKey)
}
