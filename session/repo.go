package session

// TokenKey is the single durable key the session core manages.
const TokenKey = "fwz_token"

// KeyValueRepo is the durable key-value collaborator holding the token.
type KeyValueRepo interface {
	// Get returns the stored value, or an error matching ErrNotFound
	Get(key string) (string, error)

	// Put creates or replaces the value
	Put(key, value string) error

	// Delete removes the key; deleting a missing key is not an error
	Delete(key string) error
}
