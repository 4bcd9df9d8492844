package gormstorage

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simviz/sceneclient/pkg/core"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	b := New(Dependencies{DB: db})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_SessionLifecycle(t *testing.T) {
	b := openTestBackend(t)

	s := &core.Session{
		Address:      "127.0.0.1",
		Port:         8080,
		StartedAt:    time.Now(),
		ConfigNumber: 1,
		ObjectCount:  3,
	}
	require.NoError(t, b.StartSession(s))
	assert.NotZero(t, s.ID, "session ID assigned back")

	require.NoError(t, b.EndSession())

	var rec SessionRecord
	require.NoError(t, b.db.First(&rec, s.ID).Error)
	assert.Equal(t, "127.0.0.1", rec.Address)
	assert.Equal(t, 3, rec.ObjectCount)
	require.NotNil(t, rec.EndedAt)
	assert.False(t, rec.EndedAt.IsZero())
}

func TestBackend_EndSessionWithoutStart(t *testing.T) {
	b := openTestBackend(t)
	assert.NoError(t, b.EndSession())
}

func TestBackend_AddObject(t *testing.T) {
	b := openTestBackend(t)
	require.NoError(t, b.StartSession(&core.Session{StartedAt: time.Now()}))

	require.NoError(t, b.AddObject(&core.ObjectInfo{Index: 4, Kind: "Mesh", Name: "anymal"}))

	var rec ObjectRecord
	require.NoError(t, b.db.First(&rec).Error)
	assert.Equal(t, uint64(4), rec.ServerIndex)
	assert.Equal(t, "Mesh", rec.Kind)
	assert.Equal(t, "anymal", rec.Name)
	assert.NotZero(t, rec.SessionID)
}

func TestBackend_RecordPose(t *testing.T) {
	b := openTestBackend(t)
	require.NoError(t, b.StartSession(&core.Session{StartedAt: time.Now()}))

	p := &core.PoseSample{
		Tick:       12,
		Name:       "anymal",
		Position:   [3]float64{1, 2, 3},
		Quaternion: [4]float64{1, 0, 0, 0},
	}
	require.NoError(t, b.RecordPose(p))

	var rec PoseRecord
	require.NoError(t, b.db.First(&rec).Error)
	assert.Equal(t, uint64(12), rec.Tick)
	assert.Equal(t, "anymal", rec.Name)
	assert.JSONEq(t, `{"position":[1,2,3],"quaternion":[1,0,0,0]}`, string(rec.Pose))
}

func TestBackend_RecordContacts(t *testing.T) {
	b := openTestBackend(t)
	require.NoError(t, b.StartSession(&core.Session{StartedAt: time.Now()}))

	batch := []core.ContactSample{
		{Tick: 7, Position: [3]float64{0, 0, 0}, Force: [3]float64{0, 0, -9.8}},
		{Tick: 7, Position: [3]float64{1, 0, 0}, Force: [3]float64{0, 0, -4.9}},
	}
	require.NoError(t, b.RecordContacts(batch))

	var rec ContactBatchRecord
	require.NoError(t, b.db.First(&rec).Error)
	assert.Equal(t, uint64(7), rec.Tick)
	assert.Equal(t, 2, rec.Count)

	// empty batches create no rows
	require.NoError(t, b.RecordContacts(nil))
	var count int64
	b.db.Model(&ContactBatchRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestBackend_RecordReinit(t *testing.T) {
	b := openTestBackend(t)
	require.NoError(t, b.StartSession(&core.Session{StartedAt: time.Now()}))

	require.NoError(t, b.RecordReinit(100, 2))

	var rec ReinitRecord
	require.NoError(t, b.db.First(&rec).Error)
	assert.Equal(t, uint64(100), rec.Tick)
	assert.Equal(t, uint64(2), rec.ConfigNumber)
	assert.False(t, rec.At.IsZero())
}
