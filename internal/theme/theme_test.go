package theme

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memStorage struct {
	value   Theme
	present bool
	loadErr error
	saves   []Theme
}

func (m *memStorage) Load() (Theme, bool, error) {
	return m.value, m.present, m.loadErr
}

func (m *memStorage) Save(t Theme) error {
	m.saves = append(m.saves, t)
	m.value, m.present = t, true
	return nil
}

func system(t Theme) func() Theme { return func() Theme { return t } }

func TestStoreStartsLight(t *testing.T) {
	s := New(&memStorage{value: Dark, present: true}, system(Dark), nil)
	assert.Equal(t, Light, s.Theme())
	assert.Equal(t, "light", s.RootClass())
	assert.False(t, s.Mounted())
}

func TestMount(t *testing.T) {
	t.Run("Should prefer the stored value", func(t *testing.T) {
		storage := &memStorage{value: Dark, present: true}
		s := New(storage, system(Light), nil)
		s.Mount()
		assert.Equal(t, Dark, s.Theme())
		assert.True(t, s.Mounted())
	})

	t.Run("Should fall back to the system preference and persist it", func(t *testing.T) {
		storage := &memStorage{}
		s := New(storage, system(Dark), nil)
		s.Mount()
		assert.Equal(t, Dark, s.Theme())
		assert.Equal(t, []Theme{Dark}, storage.saves)
	})

	t.Run("Should fall back to light without any preference", func(t *testing.T) {
		s := New(&memStorage{}, system(""), nil)
		s.Mount()
		assert.Equal(t, Light, s.Theme())
	})

	t.Run("Should treat unreadable storage as absent", func(t *testing.T) {
		s := New(&memStorage{loadErr: errors.New("corrupt")}, system(Dark), nil)
		s.Mount()
		assert.Equal(t, Dark, s.Theme())
	})

	t.Run("Should only mount once", func(t *testing.T) {
		storage := &memStorage{}
		s := New(storage, system(Dark), nil)
		s.Mount()
		storage.value = Light
		s.Mount()
		assert.Equal(t, Dark, s.Theme())
		assert.Len(t, storage.saves, 1)
	})
}

func TestToggle(t *testing.T) {
	t.Run("Should not persist before mount", func(t *testing.T) {
		storage := &memStorage{}
		s := New(storage, nil, nil)
		assert.Equal(t, Dark, s.Toggle())
		assert.Empty(t, storage.saves)
	})

	t.Run("Should persist every toggle after mount", func(t *testing.T) {
		storage := &memStorage{}
		s := New(storage, nil, nil)
		s.Mount()
		assert.Equal(t, Dark, s.Toggle())
		assert.Equal(t, Light, s.Toggle())
		assert.Equal(t, []Theme{Light, Dark, Light}, storage.saves)
		assert.Equal(t, "light", s.RootClass())
	})
}

func TestParse(t *testing.T) {
	got, ok := Parse(" Dark ")
	assert.True(t, ok)
	assert.Equal(t, Dark, got)

	_, ok = Parse("no-preference")
	assert.False(t, ok)
}
