package cache

import (
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "strings"
    "time"
)

// ClearDir removes dir and everything in it, then recreates it empty.
func ClearDir(dir string) error {
    if strings.TrimSpace(dir) == "" {
        return errors.New("empty dir")
    }
    if err := os.RemoveAll(dir); err != nil {
        return err
    }
    return os.MkdirAll(dir, 0o755)
}

// PurgePagesByAge deletes page entries whose SavedAt is older than maxAge.
// Unreadable or malformed metadata is left alone.
func PurgePagesByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    now := time.Now().UTC()
    removed := 0
    err := walkFiles(dir, func(path string, d fs.DirEntry) {
        if !strings.HasSuffix(d.Name(), ".meta.json") {
            return
        }
        b, err := os.ReadFile(path)
        if err != nil {
            return
        }
        var e PageEntry
        if err := json.Unmarshal(b, &e); err != nil {
            return
        }
        if now.Sub(e.SavedAt) <= maxAge {
            return
        }
        removed++
        _ = os.Remove(path)
        _ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
    })
    return removed, err
}

// PurgeVerdictsByAge deletes verdict files not used within maxAge.
func PurgeVerdictsByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    now := time.Now().UTC()
    removed := 0
    err := walkFiles(dir, func(path string, d fs.DirEntry) {
        name := d.Name()
        if strings.HasSuffix(name, ".meta.json") || !strings.HasSuffix(name, ".json") {
            return
        }
        info, err := d.Info()
        if err != nil || now.Sub(info.ModTime().UTC()) <= maxAge {
            return
        }
        removed++
        _ = os.Remove(path)
    })
    return removed, err
}

// walkFiles visits regular files under dir. A missing dir is empty.
func walkFiles(dir string, fn func(path string, d fs.DirEntry)) error {
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            return err
        }
        if !d.IsDir() {
            fn(path, d)
        }
        return nil
    })
    if errors.Is(err, fs.ErrNotExist) {
        return nil
    }
    return err
}
