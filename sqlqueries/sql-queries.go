// Package sqlqueries holds the SELECT statements that feed the star schema and the DDL that creates it.
package sqlqueries

import (
	_ "embed"
	"fmt"
	"io/ioutil"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

const (
	SongplayTableInsert = "songplay_table_insert"
	UserTableInsert     = "user_table_insert"
	SongTableInsert     = "song_table_insert"
	ArtistTableInsert   = "artist_table_insert"
	TimeTableInsert     = "time_table_insert"
	CreateTables        = "create_tables"
)

//go:embed create_tables.sql
var createTablesSql string

var defaults = map[string]string{
	SongplayTableInsert: `
		SELECT
			md5(events.sessionid || events.start_time) songplay_id,
			events.start_time,
			events.userid,
			events.level,
			songs.song_id,
			songs.artist_id,
			events.sessionid,
			events.location,
			events.useragent
		FROM (SELECT TIMESTAMP 'epoch' + ts/1000 * interval '1 second' AS start_time, *
			FROM staging_events
			WHERE page='NextSong') events
		LEFT JOIN staging_songs songs
		ON events.song = songs.title
			AND events.artist = songs.artist_name
			AND events.length = songs.duration`,
	UserTableInsert: `
		SELECT distinct userid, firstname, lastname, gender, level
		FROM staging_events
		WHERE page='NextSong'`,
	SongTableInsert: `
		SELECT distinct song_id, title, artist_id, year, duration
		FROM staging_songs`,
	ArtistTableInsert: `
		SELECT distinct artist_id, artist_name, artist_location, artist_latitude, artist_longitude
		FROM staging_songs`,
	TimeTableInsert: `
		SELECT start_time, extract(hour from start_time), extract(day from start_time), extract(week from start_time),
			extract(month from start_time), extract(year from start_time), extract(dayofweek from start_time)
		FROM songplays`,
	CreateTables: createTablesSql,
}

// Registry maps names to SQL text. The zero value is not usable; call NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	queries map[string]string
}

// NewRegistry returns a registry holding the built-in statements.
func NewRegistry() *Registry {
	r := &Registry{queries: make(map[string]string, len(defaults))}
	for k, v := range defaults {
		r.queries[k] = strings.TrimSpace(v)
	}
	return r
}

// Get returns the SQL registered under name.
func (r *Registry) Get(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queries[name]
	if !ok {
		return "", fmt.Errorf("no SQL registered with name %q; available: %v", name, strings.Join(r.namesLocked(), ", "))
	}
	return q, nil
}

// Set registers or replaces name.
func (r *Registry) Set(name string, sql string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[name] = strings.TrimSpace(sql)
}

// Names returns the sorted registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.queries))
	for k := range r.queries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Load merges a YAML map of name: sql from fileName into the registry.
func (r *Registry) Load(fileName string) error {
	b, err := ioutil.ReadFile(fileName)
	if err != nil {
		return err
	}
	m := make(map[string]string)
	if err = yaml.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("error parsing SQL file %v: %w", fileName, err)
	}
	for k, v := range m {
		r.Set(k, v)
	}
	return nil
}
