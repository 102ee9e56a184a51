package clubrepo

import (
	"testing"

	"github.com/Overland-East-Bay/club-registry/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/club-registry/internal/adapters/postgres/testutil"
	clubrepoport "github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
)

func TestContract_PostgresClubRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunClubRepo(t, func(t *testing.T) (clubrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
