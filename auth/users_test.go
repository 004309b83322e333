package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-manager/config"
)

func TestExtractBetween(t *testing.T) {
	str := "{sha256}(foo{password}{user}{salt}{globalsalt})"
	assert.Equal(t, "foo{password}{user}{salt}{globalsalt}", extractBetween(str, "{sha256}(", ")"))
	assert.Empty(t, extractBetween(str, "{sha1}(", ")"))
	assert.Empty(t, extractBetween("{sha256}(foo", "{sha256}(", ")"))
}

func TestHashes(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sha256Hash("hello"))
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", sha1Hash("hello"))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", md5Hash("hello"))
}

func TestApplyHashMacro(t *testing.T) {
	hash, err := ApplyHashMacro("{sha256}({password}{user}{salt}{globalsalt})", "pass", "bob", "usalt", "gsalt")
	require.NoError(t, err)
	assert.Equal(t, sha256Hash("passbobusaltgsalt"), hash)

	hash, err = ApplyHashMacro("{sha1}({password}{user})", "pass", "bob", "", "")
	require.NoError(t, err)
	assert.Equal(t, sha1Hash("passbob"), hash)

	hash, err = ApplyHashMacro("{md5}({user}{salt})", "pass", "bob", "usalt", "")
	require.NoError(t, err)
	assert.Equal(t, md5Hash("bobusalt"), hash)

	clear, err := ApplyHashMacro("{clear}({password})", "pass", "bob", "", "")
	require.NoError(t, err)
	assert.Equal(t, "pass", clear)

	_, err = ApplyHashMacro("{unknown}({password})", "pass", "bob", "", "")
	assert.Error(t, err)
}

func TestDBToBool(t *testing.T) {
	assert.True(t, dbToBool(true))
	assert.True(t, dbToBool(int64(1)))
	assert.True(t, dbToBool([]uint8("t")))
	assert.True(t, dbToBool("true"))
	assert.False(t, dbToBool(int64(0)))
	assert.False(t, dbToBool(nil))
}

func fileBackendConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.UserBackend = "file"
	cfg.Auth.HashMacro = "{sha256}({password}{salt}{globalsalt})"
	cfg.Auth.Salt = "g"
	return cfg
}

func TestAuthenticateFileBackend(t *testing.T) {
	users := &UsersFile{Users: map[string]UserInfo{
		"alice": {Hash: sha256Hash("secret123" + "s1" + "g"), Salt: "s1", Admin: true},
	}}
	a := NewAuthenticator(fileBackendConfig(), users)

	admin, err := a.Authenticate(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.True(t, admin)

	_, err = a.Authenticate(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = a.Authenticate(context.Background(), "mallory", "secret123")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestLoadAndSaveUsers(t *testing.T) {
	root := t.TempDir()
	t.Setenv("LISTING_MANAGER_ROOT", root)

	uf := &UsersFile{Users: map[string]UserInfo{"bob": {Hash: "h", Salt: "s"}}}
	require.NoError(t, SaveUsers("users.yaml", uf))
	_, err := os.Stat(filepath.Join(root, "users.yaml"))
	require.NoError(t, err)

	got, err := LoadUsers("users.yaml")
	require.NoError(t, err)
	assert.Equal(t, uf.Users, got.Users)
}
