package memory

import (
	"time"

	"ai-blueprint-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// ProgressRepository holds the progress record of every in-flight and
// recently finished generation request. Records are replaced wholesale on
// every write and cloned on the way in and out, so a poller can never
// observe a record mixing fields from two different writes.
//
// In-flight records never expire; terminal records are kept for
// terminalTTL and then purged, since by then the client either collected
// the result or abandoned the request.
type ProgressRepository struct {
	cache       *cache.Cache
	terminalTTL time.Duration
}

func NewProgressRepository(terminalTTL time.Duration) *ProgressRepository {
	// Purge sweep every 10 minutes, matching the default retention shape
	// used elsewhere for in-memory session state.
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &ProgressRepository{
		cache:       c,
		terminalTTL: terminalTTL,
	}
}

// Put replaces the record for record.RequestId.
func (r *ProgressRepository) Put(record *store.ProgressRecord) {
	snapshot := clone(record)
	if snapshot.IsTerminal() {
		r.cache.Set(snapshot.RequestId, snapshot, r.terminalTTL)
		return
	}
	r.cache.Set(snapshot.RequestId, snapshot, cache.NoExpiration)
}

// Get returns the latest record for requestId, or found=false if the
// pipeline has not written yet (or retention already evicted the entry).
func (r *ProgressRepository) Get(requestId string) (*store.ProgressRecord, bool) {
	if x, found := r.cache.Get(requestId); found {
		return clone(x.(*store.ProgressRecord)), true
	}
	return nil, false
}

func clone(record *store.ProgressRecord) *store.ProgressRecord {
	c := *record
	if record.Error != nil {
		e := *record.Error
		c.Error = &e
	}
	if record.Data != nil {
		c.Data = deepCopyMap(record.Data)
	}
	return &c
}

// Data comes out of json.Unmarshal, so its values are maps, slices and
// scalars; copying those three shapes is a full deep copy. Readers must not
// be able to reach the stored record through nested containers.
func deepCopyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
