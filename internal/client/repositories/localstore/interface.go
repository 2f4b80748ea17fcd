// Package localstore is the client's secure local storage: a string-valued
// key-value table in a local sqlite database. It replaces the mobile
// platform's secure store; each key is read and written atomically with no
// transactional grouping across keys (callers that need grouping use
// dbx.WithTx).
package localstore

import "context"

// Keys persisted by the client. Names follow the backend's mobile client so
// the stored values line up with what the server expects back.
const (
	KeySessionToken   = "phpSessionId"
	KeyUserID         = "userID"
	KeyUserName       = "userName"
	KeyManualMode     = "userManual"
	KeyCheckedAddress = "checkedAddress"
	KeyCompanyLogo    = "companyLogo"
	KeyAvatarPath     = "userAvatar"
	KeySavedEmail     = "savedEmail"
	KeySavedPassword  = "savedPassword" // sealed, see cryptox
	KeyDeviceID       = "deviceID"
	KeyCredSalt       = "credSalt"
)

// SessionKeys are the keys wiped on logout or session invalidation. The
// saved autofill credentials and the device identity survive a wipe.
var SessionKeys = []string{
	KeySessionToken,
	KeyUserID,
	KeyUserName,
	KeyManualMode,
	KeyCheckedAddress,
	KeyCompanyLogo,
}

type Repository interface {
	// Get returns the value for key, or "" with a nil error when the key is
	// not present.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	// List returns every stored pair.
	List(ctx context.Context) (map[string]string, error)
	// Clear removes every stored pair.
	Clear(ctx context.Context) error
}
