package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreAudioCommand(t *testing.T) {
	s := newTestStorage(t)

	audio := AudioInfo{Command: "horn", URL: "https://cdn.example/horn.mp3", Source: SourceDiscord, FileType: "mp3"}
	require.NoError(t, s.StoreAudioCommand("guild-1", audio))

	got, err := s.GetAudioCommand("guild-1", "horn")
	require.NoError(t, err)
	assert.Equal(t, audio, *got)
}

func TestStoreAudioCommandDuplicate(t *testing.T) {
	s := newTestStorage(t)

	audio := AudioInfo{Command: "horn", URL: "u", Source: SourceDiscord}
	require.NoError(t, s.StoreAudioCommand("guild-1", audio))

	err := s.StoreAudioCommand("guild-1", audio)
	require.ErrorIs(t, err, ErrCommandExists, "a second add must not overwrite")

	// The same command name is free on another guild.
	assert.NoError(t, s.StoreAudioCommand("guild-2", audio))
}

func TestUpdateAudioCommand(t *testing.T) {
	s := newTestStorage(t)

	err := s.UpdateAudioCommand("guild-1", AudioInfo{Command: "horn"})
	require.ErrorIs(t, err, ErrCommandNotFound, "update requires an existing command")

	require.NoError(t, s.StoreAudioCommand("guild-1", AudioInfo{Command: "horn", URL: "old"}))
	require.NoError(t, s.UpdateAudioCommand("guild-1", AudioInfo{Command: "horn", URL: "new"}))

	got, err := s.GetAudioCommand("guild-1", "horn")
	require.NoError(t, err)
	assert.Equal(t, "new", got.URL)
}

func TestListAudioCommandsSorted(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.StoreAudioCommand("guild-1", AudioInfo{Command: name}))
	}

	list, err := s.ListAudioCommands("guild-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Command)
	assert.Equal(t, "mid", list[1].Command)
	assert.Equal(t, "zeta", list[2].Command)
}

func TestListAudioCommandsEmpty(t *testing.T) {
	s := newTestStorage(t)

	list, err := s.ListAudioCommands("guild-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGuildPrefix(t *testing.T) {
	s := newTestStorage(t)

	prefix, err := s.GuildPrefix("guild-1")
	require.NoError(t, err)
	assert.Empty(t, prefix, "unset prefix reads as empty")

	require.NoError(t, s.SetGuildPrefix("guild-1", "?"))
	prefix, err = s.GuildPrefix("guild-1")
	require.NoError(t, err)
	assert.Equal(t, "?", prefix)
}

func TestResetGuild(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetGuildPrefix("guild-1", "?"))
	require.NoError(t, s.StoreAudioCommand("guild-1", AudioInfo{Command: "horn"}))
	require.NoError(t, s.StoreAudioCommand("guild-2", AudioInfo{Command: "horn"}))

	s.ResetGuild("guild-1")

	prefix, err := s.GuildPrefix("guild-1")
	require.NoError(t, err)
	assert.Empty(t, prefix, "the prefix override is gone")

	_, err = s.GetAudioCommand("guild-1", "horn")
	assert.ErrorIs(t, err, ErrCommandNotFound)

	_, err = s.GetAudioCommand("guild-2", "horn")
	assert.NoError(t, err, "other guilds keep their commands")
}

func TestRecordSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.StoreAudioCommand("guild-1", AudioInfo{
		Command: "clip",
		URL:     "https://youtu.be/x",
		Source:  SourceYouTube,
		Time:    &AudioRange{Start: 30, End: 40},
	}))
	require.NoError(t, s.Close())

	reloaded, err := New(path)
	require.NoError(t, err)
	defer reloaded.Close()

	got, err := reloaded.GetAudioCommand("guild-1", "clip")
	require.NoError(t, err)
	require.NotNil(t, got.Time)
	assert.Equal(t, 30.0, got.Time.Start)
	assert.Equal(t, 40.0, got.Time.End)
}
