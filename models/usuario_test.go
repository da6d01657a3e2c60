package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsuarioActivoDefaultsToActive(t *testing.T) {
	var u Usuario
	require.NoError(t, json.Unmarshal([]byte(`{"username":"mesa","password":"clave-segura","idTrabajador":2,"idRol":3}`), &u))
	assert.Nil(t, u.Activo)
	assert.True(t, u.IsActivo())

	require.NoError(t, json.Unmarshal([]byte(`{"username":"mesa","idTrabajador":2,"idRol":3,"activo":false}`), &u))
	require.NotNil(t, u.Activo)
	assert.False(t, u.IsActivo())
}
