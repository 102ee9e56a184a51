package genesis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

func TestDecode_NamesAndHex(t *testing.T) {
	t.Parallel()

	g, err := Decode(strings.NewReader(`
clubs:
  - name: rotary
    members: [alice, bob]
  - name: tennis
  - hex: "00ff"
    members: [carol]
`))
	require.NoError(t, err)
	assert.Equal(t, domain.Genesis{Clubs: []domain.GenesisClub{
		{Club: "rotary", Members: []domain.AccountID{"alice", "bob"}},
		{Club: "tennis", Members: []domain.AccountID{}},
		{Club: domain.ClubIDFromBytes([]byte{0x00, 0xff}), Members: []domain.AccountID{"carol"}},
	}}, g)
}

func TestDecode_LaterEntryReplaces(t *testing.T) {
	t.Parallel()

	g, err := Decode(strings.NewReader(`
clubs:
  - name: rotary
    members: [alice]
  - name: tennis
  - name: rotary
    members: [bob]
`))
	require.NoError(t, err)
	require.Len(t, g.Clubs, 2)
	assert.Equal(t, domain.ClubID("rotary"), g.Clubs[0].Club)
	assert.Equal(t, []domain.AccountID{"bob"}, g.Clubs[0].Members)
}

func TestDecode_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"duplicate member": "clubs:\n  - name: a\n    members: [x, x]\n",
		"both keys":        "clubs:\n  - name: a\n    hex: \"61\"\n",
		"no key":           "clubs:\n  - members: [x]\n",
		"bad hex":          "clubs:\n  - hex: zz\n",
		"unknown field":    "clubs:\n  - name: a\n    minimum: 2\n",
	}
	for name, doc := range cases {
		_, err := Decode(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}

func TestLoad_EmptyPathAndEmptyFile(t *testing.T) {
	t.Parallel()

	g, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, g.Clubs)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	g, err = Load(path)
	require.NoError(t, err)
	assert.Empty(t, g.Clubs)
}
