package authentication

// keystring.go keeps the CLI session in the OS keyring
import (
	"encoding/json"
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "animehub-cli"
	tokenKey    = "auth_tokens"
)

var ErrNotLoggedIn = errors.New("not logged in; run `animehub auth login` first")

type StoredCredentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
	ExpiresAt    int64  `json:"expires_at"`
}

func StoreTokens(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, tokenKey, string(data))
}

func GetTokens() (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func DeleteTokens() error {
	err := keyring.Delete(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// KeyringStore adapts the keyring to the HTTP client's token store, keeping the username on rotation
type KeyringStore struct{}

func (KeyringStore) Load() (string, string, error) {
	creds, err := GetTokens()
	if err != nil {
		return "", "", err
	}
	return creds.AccessToken, creds.RefreshToken, nil
}

func (KeyringStore) Save(accessToken, refreshToken string) error {
	creds, err := GetTokens()
	if err != nil {
		creds = &StoredCredentials{}
	}
	creds.AccessToken = accessToken
	creds.RefreshToken = refreshToken
	return StoreTokens(creds)
}
