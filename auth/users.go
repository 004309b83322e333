package auth

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"listing-manager/config"
	"listing-manager/utils"
)

var (
	ErrUnknownUser   = errors.New("unknown user")
	ErrWrongPassword = errors.New("wrong password")
)

type UsersFile struct {
	Users map[string]UserInfo `yaml:"users"`
}

type UserInfo struct {
	Hash  string `yaml:"hash"`
	Salt  string `yaml:"salt"`
	Admin bool   `yaml:"admin"`
}

// LoadUsers reads the file backend, relative to the project root.
func LoadUsers(file string) (*UsersFile, error) {
	var uf UsersFile
	data, err := os.ReadFile(utils.ResolvePath(file))
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return nil, err
	}
	if uf.Users == nil {
		uf.Users = map[string]UserInfo{}
	}
	return &uf, nil
}

// SaveUsers writes uf back in the same layout LoadUsers reads.
func SaveUsers(file string, uf *UsersFile) error {
	data, err := yaml.Marshal(uf)
	if err != nil {
		return err
	}
	return os.WriteFile(utils.ResolvePath(file), data, 0600)
}

// Authenticator checks operator credentials against the configured backend.
type Authenticator struct {
	cfg *config.Config

	mu    sync.RWMutex
	users *UsersFile
}

func NewAuthenticator(cfg *config.Config, users *UsersFile) *Authenticator {
	return &Authenticator{cfg: cfg, users: users}
}

// SetUsers swaps the file backend's user list, on reload.
func (a *Authenticator) SetUsers(users *UsersFile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users = users
}

// Authenticate returns whether username is an admin, or ErrUnknownUser /
// ErrWrongPassword. Other errors are backend failures.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if a.cfg.Auth.UserBackend == "file" {
		a.mu.RLock()
		users := a.users
		a.mu.RUnlock()
		if users == nil {
			return false, ErrUnknownUser
		}
		u, ok := users.Users[username]
		if !ok {
			return false, ErrUnknownUser
		}
		passHash, err := ApplyHashMacro(a.cfg.Auth.HashMacro, password, username, u.Salt, a.cfg.Auth.Salt)
		if err != nil {
			return false, err
		}
		if passHash != u.Hash {
			return false, ErrWrongPassword
		}
		return u.Admin, nil
	}

	db, err := sql.Open(a.cfg.SQLDriver(), a.cfg.Auth.DBDSN)
	if err != nil {
		return false, fmt.Errorf("open user db: %w", err)
	}
	defer db.Close()

	userHash, userSalt, isAdmin, err := GetUserFromDB(ctx, db, a.cfg.Auth.UserRequest, username, password)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrUnknownUser
	}
	if err != nil {
		return false, err
	}
	// db_pass_hash means the query did not compare the password itself
	if a.cfg.Auth.DBPassHash {
		passHash, err := ApplyHashMacro(a.cfg.Auth.DBHashMacro, password, username, userSalt, a.cfg.Auth.Salt)
		if err != nil {
			return false, err
		}
		if passHash != userHash {
			return false, ErrWrongPassword
		}
	}
	return isAdmin, nil
}

// Ex: "SELECT hash, salt, is_admin FROM users WHERE name = ? AND password =  ? "
func GetUserFromDB(ctx context.Context, db *sql.DB, query, username string, password string) (hash, salt string, isAdmin bool, err error) {
	row := db.QueryRowContext(ctx, query, username, password)
	var adminVal interface{}
	err = row.Scan(&hash, &salt, &adminVal)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("user lookup failed", "user", username, "error", err)
		}
		return "", "", false, err
	}
	isAdmin = dbToBool(adminVal)
	return
}

func dbToBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int64:
		return val != 0
	case int:
		return val != 0
	case []uint8:
		s := string(val)
		return s == "1" || s == "t" || s == "T" || s == "true" || s == "TRUE"
	case string:
		return val == "1" || val == "t" || val == "T" || val == "true" || val == "TRUE"
	}
	return false
}

func ApplyHashMacro(macro, password, user, userSalt, globalSalt string) (string, error) {
	replace := func(s string) string {
		s = strings.ReplaceAll(s, "{password}", password)
		s = strings.ReplaceAll(s, "{user}", user)
		s = strings.ReplaceAll(s, "{salt}", userSalt)
		s = strings.ReplaceAll(s, "{globalsalt}", globalSalt)
		return s
	}
	macro = strings.TrimSpace(macro)
	for _, h := range []struct {
		prefix string
		sum    func(string) string
	}{
		{"{sha256}", sha256Hash},
		{"{sha1}", sha1Hash},
		{"{md5}", md5Hash},
		{"{clear}", func(s string) string { return s }},
	} {
		if strings.HasPrefix(macro, h.prefix) {
			plain := extractBetween(macro, h.prefix+"(", ")")
			return h.sum(replace(plain)), nil
		}
	}
	return "", errors.New("unsupported hash macro")
}

func extractBetween(str, start, end string) string {
	a := strings.Index(str, start)
	if a == -1 {
		return ""
	}
	a += len(start)
	b := strings.LastIndex(str, end)
	if b == -1 || b <= a {
		return ""
	}
	return str[a:b]
}

func sha256Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
func sha1Hash(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
func md5Hash(s string) string {
	h := md5.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
