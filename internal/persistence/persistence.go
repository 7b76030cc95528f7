// Package persistence implements flat-file load/save of the World,
// per-entity Game/Tournament archives, atomic rename, and the seed-node
// team/player ranking store (ranking.go).
//
// Grounded on db.go/start_world.go (BLAKE3 content hashing,
// LZ4 blob compression, Ed25519 identity persisted alongside the rest of
// the state). The persisted state layout is a directory keyed by
// store_prefix holding `world` (current), `world.bak` (last good),
// `games/<GameId>`, `tournaments/<TournamentId>`, and `team_ranking` for
// the seed-node variant.
package persistence

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vitadek/piratecrew/internal/clock"
	"github.com/vitadek/piratecrew/internal/galaxy"
	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/kartoffel"
	"github.com/vitadek/piratecrew/internal/matchengine"
	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/security"
	"github.com/vitadek/piratecrew/internal/team"
	"github.com/vitadek/piratecrew/internal/tournament"
	"github.com/vitadek/piratecrew/internal/world"
)

const (
	worldFileName = "world"
	backupSuffix  = ".bak"
	gamesDirName  = "games"
	tournDirName  = "tournaments"
)

// persistedWorld is the on-disk projection of world.World: every field that
// round-trips, with peer-only teams/players dropped, since the saved World
// is a filtered projection that never persists ingested peer entities as if
// locally authored. Default-valued fields use `omitempty` to keep saves
// small.
type persistedWorld struct {
	Seed          int64        `json:"seed"`
	OwnTeamId     *ids.TeamId  `json:"own_team_id,omitempty"`
	IdentityBlob  string       `json:"identity_blob,omitempty"`
	Fast          clock.Tick   `json:"fast,omitempty"`
	Short         clock.Tick   `json:"short,omitempty"`
	Medium        clock.Tick   `json:"medium,omitempty"`
	Long          clock.Tick   `json:"long,omitempty"`

	Teams       map[ids.TeamId]*team.Team             `json:"teams,omitempty"`
	Players     map[ids.PlayerId]*player.Player        `json:"players,omitempty"`
	Planets     map[ids.PlanetId]*galaxy.Planet        `json:"planets,omitempty"`
	Games       map[ids.GameId]*matchengine.Game       `json:"games,omitempty"`
	Tournaments map[ids.TournamentId]*tournament.Tournament `json:"tournaments,omitempty"`
	Kartoffels  map[ids.KartoffelId]*kartoffel.Kartoffel    `json:"kartoffels,omitempty"`

	PastGames       map[ids.GameId]world.GameSummary             `json:"past_games,omitempty"`
	PastTournaments map[ids.TournamentId]world.TournamentSummary `json:"past_tournaments,omitempty"`
}

// filterPeerOwned drops every team whose PeerId is set (an ingested copy of
// a remote node's own team) and every player that team alone references:
// ingested NetworkTeam copies are peer-only and never persisted as if
// locally authored.
func filterPeerOwned(w *world.World) (map[ids.TeamId]*team.Team, map[ids.PlayerId]*player.Player) {
	keepTeams := make(map[ids.TeamId]*team.Team, len(w.Teams))
	for id, t := range w.Teams {
		if t.PeerId == nil {
			keepTeams[id] = t
		}
	}

	keepPlayers := make(map[ids.PlayerId]*player.Player, len(w.Players))
	for id, p := range w.Players {
		if p.Team == nil {
			keepPlayers[id] = p
			continue
		}
		if _, ownTeam := keepTeams[*p.Team]; ownTeam {
			keepPlayers[id] = p
		}
	}
	return keepTeams, keepPlayers
}

func toPersisted(w *world.World) *persistedWorld {
	fast, short, medium, long := w.Markers()
	teams, players := filterPeerOwned(w)

	pw := &persistedWorld{
		Seed:            w.Seed,
		OwnTeamId:       w.OwnTeamId,
		Fast:            fast,
		Short:           short,
		Medium:          medium,
		Long:            long,
		Teams:           teams,
		Players:         players,
		Planets:         w.Planets,
		Games:           w.Games,
		Tournaments:     w.Tournaments,
		Kartoffels:      w.Kartoffels,
		PastGames:       w.PastGames,
		PastTournaments: w.PastTournaments,
	}
	if w.Identity != nil {
		pw.IdentityBlob = w.Identity.Blob()
	}
	return pw
}

func fromPersisted(pw *persistedWorld) (*world.World, error) {
	var identity *security.Identity
	if pw.IdentityBlob != "" {
		var err error
		identity, err = security.FromBlob(pw.IdentityBlob)
		if err != nil {
			return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: restore identity")
		}
	}

	w := world.Restore(pw.Seed, identity, pw.Fast, pw.Short, pw.Medium, pw.Long)
	w.OwnTeamId = pw.OwnTeamId
	if pw.Teams != nil {
		w.Teams = pw.Teams
	}
	if pw.Players != nil {
		w.Players = pw.Players
	}
	if pw.Planets != nil {
		w.Planets = pw.Planets
	}
	if pw.Games != nil {
		w.Games = pw.Games
	}
	if pw.Tournaments != nil {
		w.Tournaments = pw.Tournaments
	}
	if pw.Kartoffels != nil {
		w.Kartoffels = pw.Kartoffels
	}
	if pw.PastGames != nil {
		w.PastGames = pw.PastGames
	}
	if pw.PastTournaments != nil {
		w.PastTournaments = pw.PastTournaments
	}
	return w, nil
}

func worldPath(prefix string) string    { return filepath.Join(prefix, worldFileName) }
func backupPath(prefix string) string   { return worldPath(prefix) + backupSuffix }
func gamesDir(prefix string) string     { return filepath.Join(prefix, gamesDirName) }
func tournDir(prefix string) string     { return filepath.Join(prefix, tournDirName) }
func gamePath(prefix string, id ids.GameId) string {
	return filepath.Join(gamesDir(prefix), id.String())
}
func tournPath(prefix string, id ids.TournamentId) string {
	return filepath.Join(tournDir(prefix), id.String())
}

// writeAtomic writes data to path by writing a sibling temp file, fsyncing
// it, then renaming over the destination, so a crash mid-write never leaves
// a half-written world file behind. os.Rename is atomic within the same
// filesystem, which is why the temp file is created alongside path rather
// than in a system tmp dir.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: create temp file in %s", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: write %s", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: sync %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: rename %s to %s", tmpPath, path)
	}
	return nil
}

// LoadWorld reads and decodes the world file under prefix. A missing file
// or a failed content-hash check surfaces as a CodecError. A failure to
// load a selected world at startup is meant to be fatal — the caller
// decides that and aborts with a descriptive message; this function only
// reports the failure.
func LoadWorld(prefix string) (*world.World, error) {
	data, err := os.ReadFile(worldPath(prefix))
	if err != nil {
		return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: read world file")
	}

	var pw persistedWorld
	if err := decodeBlob(data, &pw); err != nil {
		return nil, err
	}
	return fromPersisted(&pw)
}

// SaveWorld writes the filtered projection of w to prefix's world file,
// atomically. If withBackup, the previous world file (if any) is copied to
// world.bak first, so a corrupted write-in-progress never destroys the
// last known-good save. Returns the number of bytes written.
func SaveWorld(w *world.World, prefix string, withBackup, uncompressed bool) (int, error) {
	if withBackup {
		if prev, err := os.ReadFile(worldPath(prefix)); err == nil {
			if err := writeAtomic(backupPath(prefix), prev); err != nil {
				return 0, err
			}
		}
	}

	data, err := encodeBlob(toPersisted(w), uncompressed)
	if err != nil {
		return 0, err
	}
	if err := writeAtomic(worldPath(prefix), data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// WorldFileData is the UI-facing summary of a world save: when it was last
// written and how large it is.
type WorldFileData struct {
	CreatedAt time.Time
	Size      int64
}

// HumanSize renders Size using go-humanize, the library
// other_examples/mini-world pulls in for exactly this UI purpose.
func (d WorldFileData) HumanSize() string { return humanize.Bytes(uint64(d.Size)) }

// HumanAge renders how long ago CreatedAt was.
func (d WorldFileData) HumanAge() string { return humanize.Time(d.CreatedAt) }

// WorldFileDataOf stats the world file under prefix without reading its
// contents.
func WorldFileDataOf(prefix string) (WorldFileData, error) {
	fi, err := os.Stat(worldPath(prefix))
	if err != nil {
		return WorldFileData{}, piraterr.Wrap(piraterr.CodecError, err, "persistence: stat world file")
	}
	return WorldFileData{CreatedAt: fi.ModTime(), Size: fi.Size()}, nil
}

// SaveGame archives a finished or in-flight game under
// prefix/games/<GameId>, atomically.
func SaveGame(g *matchengine.Game, prefix string) error {
	data, err := encodeBlob(g, false)
	if err != nil {
		return err
	}
	return writeAtomic(gamePath(prefix, g.Id), data)
}

// SaveTournament archives a tournament under
// prefix/tournaments/<TournamentId>, atomically.
func SaveTournament(t *tournament.Tournament, prefix string) error {
	data, err := encodeBlob(t, false)
	if err != nil {
		return err
	}
	return writeAtomic(tournPath(prefix, t.Id), data)
}

// Reset wipes every persisted file under prefix (world, backup, games,
// tournaments), used by the --reset-world CLI flag.
func Reset(prefix string) error {
	if err := os.RemoveAll(prefix); err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: reset %s", prefix)
	}
	return nil
}
