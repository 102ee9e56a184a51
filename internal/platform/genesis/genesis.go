// Package genesis loads the registry's bootstrap data.
package genesis

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

// File is the on-disk bootstrap format:
//
//	clubs:
//	  - name: rotary
//	    members: [alice, bob]
//	  - hex: "00ff"
//	    members: []
type File struct {
	Clubs []ClubEntry `yaml:"clubs"`
}

// ClubEntry names a club either by a UTF-8 name or by hex-encoded raw bytes.
type ClubEntry struct {
	Name    *string  `yaml:"name"`
	Hex     *string  `yaml:"hex"`
	Members []string `yaml:"members"`
}

// Load reads bootstrap data from path. An empty path yields an empty genesis.
func Load(path string) (domain.Genesis, error) {
	if strings.TrimSpace(path) == "" {
		return domain.Genesis{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Genesis{}, fmt.Errorf("open bootstrap file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses bootstrap YAML.
//
// A later entry for the same club replaces an earlier one. Duplicate members
// within one entry are rejected.
func Decode(r io.Reader) (domain.Genesis, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return domain.Genesis{}, nil
		}
		return domain.Genesis{}, fmt.Errorf("decode bootstrap yaml: %w", err)
	}

	out := domain.Genesis{Clubs: make([]domain.GenesisClub, 0, len(file.Clubs))}
	index := make(map[domain.ClubID]int, len(file.Clubs))
	for i, e := range file.Clubs {
		club, err := e.clubID()
		if err != nil {
			return domain.Genesis{}, fmt.Errorf("clubs[%d]: %w", i, err)
		}
		members := make([]domain.AccountID, 0, len(e.Members))
		seen := make(map[string]struct{}, len(e.Members))
		for _, m := range e.Members {
			if _, dup := seen[m]; dup {
				return domain.Genesis{}, fmt.Errorf("clubs[%d]: duplicate member %q", i, m)
			}
			seen[m] = struct{}{}
			members = append(members, domain.AccountID(m))
		}

		gc := domain.GenesisClub{Club: club, Members: members}
		if at, ok := index[club]; ok {
			out.Clubs[at] = gc
			continue
		}
		index[club] = len(out.Clubs)
		out.Clubs = append(out.Clubs, gc)
	}
	return out, nil
}

func (e ClubEntry) clubID() (domain.ClubID, error) {
	switch {
	case e.Name != nil && e.Hex != nil:
		return "", fmt.Errorf("set exactly one of name or hex")
	case e.Name != nil:
		return domain.ClubID(*e.Name), nil
	case e.Hex != nil:
		b, err := hex.DecodeString(*e.Hex)
		if err != nil {
			return "", fmt.Errorf("invalid hex club key: %w", err)
		}
		return domain.ClubIDFromBytes(b), nil
	default:
		return "", fmt.Errorf("club needs a name or hex key")
	}
}
