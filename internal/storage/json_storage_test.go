package storage

import (
	"os"
	"path/filepath"
	"testing"

	"pagepilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*JSONStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewJSONStorage(path)
	require.NoError(t, err)
	return s, path
}

func TestTokenRoundtrip(t *testing.T) {
	s, path := newStore(t)

	require.NoError(t, s.SaveToken("page_1", "tok-abc"))

	tok, err := s.LoadToken("page_1")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)

	// a fresh instance reads the same file back
	reopened, err := NewJSONStorage(path)
	require.NoError(t, err)
	tok, err = reopened.LoadToken("page_1")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)
}

func TestLoadTokenMissingPage(t *testing.T) {
	s, _ := newStore(t)
	tok, err := s.LoadToken("unknown")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestPersonasRoundtrip(t *testing.T) {
	s, path := newStore(t)

	personas := []domain.Persona{
		{ID: "p1", Name: "Mai", Role: "owner", Style: "warm", Tone: "upbeat", Catchphrases: "yummy!"},
		{ID: "p2", Name: "Bot", Role: "assistant", Style: "dry", Tone: "formal"},
	}
	require.NoError(t, s.SavePersonas(personas))

	reopened, err := NewJSONStorage(path)
	require.NoError(t, err)
	got, err := reopened.LoadPersonas()
	require.NoError(t, err)
	assert.Equal(t, personas, got)
}

func TestReplyStatsRollOverByDate(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.IncrementReplyCount("page_1", "2024-05-01"))
	require.NoError(t, s.IncrementReplyCount("page_1", "2024-05-01"))

	count, date, err := s.GetReplyStats("page_1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "2024-05-01", date)

	// a new day resets the counter
	require.NoError(t, s.IncrementReplyCount("page_1", "2024-05-02"))
	count, date, err = s.GetReplyStats("page_1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "2024-05-02", date)
}

func TestStatsAreScopedPerPage(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.IncrementReplyCount("page_1", "2024-05-01"))
	require.NoError(t, s.IncrementReplyCount("page_2", "2024-05-01"))
	require.NoError(t, s.IncrementReplyCount("page_2", "2024-05-01"))

	c1, _, err := s.GetReplyStats("page_1")
	require.NoError(t, err)
	c2, _, err := s.GetReplyStats("page_2")
	require.NoError(t, err)
	assert.Equal(t, 1, c1)
	assert.Equal(t, 2, c2)
}

func TestCorruptFileFailsLoudly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONStorage(path)
	require.Error(t, err)
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	s, path := newStore(t)
	require.NoError(t, s.SaveToken("page_1", "tok"))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
