package cache

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "os"
    "path/filepath"
    "time"
)

// VerdictCache stores model trust assessments keyed by model and prompt.
type VerdictCache struct {
    Dir         string
    StrictPerms bool
}

// KeyFrom builds a cache key from the model name and the full prompt.
func KeyFrom(model, prompt string) string {
    h := sha256.Sum256([]byte(model + "\n\n" + prompt))
    return hex.EncodeToString(h[:])
}

func (c *VerdictCache) pathFor(key string) string {
    return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached bytes for key. A miss is not an error.
func (c *VerdictCache) Get(_ context.Context, key string) ([]byte, bool, error) {
    if c == nil || c.Dir == "" {
        return nil, false, ErrNoDir
    }
    p := c.pathFor(key)
    b, err := os.ReadFile(p)
    if err != nil {
        return nil, false, nil
    }
    // mtime doubles as last-use time for age purging
    now := time.Now()
    _ = os.Chtimes(p, now, now)
    return b, true, nil
}

// Save writes data under key.
func (c *VerdictCache) Save(_ context.Context, key string, data []byte) error {
    if c == nil || c.Dir == "" {
        return ErrNoDir
    }
    if err := mkdir(c.Dir, c.StrictPerms); err != nil {
        return err
    }
    return os.WriteFile(c.pathFor(key), data, fileMode(c.StrictPerms))
}
