package ws

import (
	"testing"

	"medlink/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestHub_SendToUser(t *testing.T) {
	h := NewHub()
	a := NewClient(1, domain.RolePatient)
	b := NewClient(1, domain.RolePatient)
	other := NewClient(2, domain.RoleDoctor)
	h.Register(a)
	h.Register(b)
	h.Register(other)

	assert.Equal(t, 2, h.SendToUser(1, map[string]string{"type": "notification"}))
	assert.Equal(t, `{"type":"notification"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"notification"}`, string(<-b.Send))
	assert.Len(t, other.Send, 0)
}

func TestHub_CloseUnregisters(t *testing.T) {
	h := NewHub()
	c := NewClient(7, domain.RoleMedStore)
	h.Register(c)
	assert.Equal(t, 1, h.Connected(7))

	c.Close()
	c.Close()
	assert.Equal(t, 0, h.Connected(7))
	assert.Equal(t, 0, h.SendToUser(7, "x"))
}
