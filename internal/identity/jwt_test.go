package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "leadflow/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var actor = Identity{ID: uuid.NewString(), Role: RoleSales, Name: "Ada"}
var expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	token, jti, err := jwtService.GenerateAccessToken(actor, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := jwtService.ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, claims.UserID)
	assert.Equal(t, string(actor.Role), claims.Role)
	assert.Equal(t, jti, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_Verify_ValidToken(t *testing.T) {
	token, _, err := jwtService.GenerateAccessToken(actor, expiresIn)
	require.NoError(t, err)

	got, err := jwtService.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func Test_Verify_FailureModesCollapse(t *testing.T) {
	expired, _, err := jwtService.GenerateAccessToken(actor, -time.Hour)
	require.NoError(t, err)

	otherKey := NewJWTService("other-signing-key", "test-issuer", "test-audience")
	forged, _, err := otherKey.GenerateAccessToken(actor, expiresIn)
	require.NoError(t, err)

	for name, credential := range map[string]string{
		"missing":   "",
		"malformed": "not-a-jwt",
		"expired":   expired,
		"forged":    forged,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := jwtService.Verify(credential)
			require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired credential"))
		})
	}
}

func Test_Verify_UnknownRoleRejected(t *testing.T) {
	token, _, err := jwtService.GenerateAccessToken(Identity{ID: uuid.NewString(), Role: Role("INTERN")}, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.Verify(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)

	_, err = ParseRole("ROOT")
	assert.Error(t, err)
}
