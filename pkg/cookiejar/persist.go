package cookiejar

import "strings"

// persistLocked rewrites the whole store from the in-memory state. Only
// unexpired cookies are written and hosts left without any are omitted, so
// a host whose cookies were all removed leaves no entry behind.
func (j *Jar) persistLocked(now int64) {
	entries := make(map[string][]string, len(j.hosts))
	for host, list := range j.hosts {
		var records []string
		for _, c := range list {
			if !c.Expired(now) {
				records = append(records, Serialize(c))
			}
		}
		if len(records) > 0 {
			entries[KeyPrefix+host] = records
		}
	}
	if err := j.prefs.Replace(entries); err != nil {
		j.log.Error("jar: persist cookies: %v", err)
	}
}

// load fills the jar from the store. Undecodable records and expired
// cookies are dropped; hosts with nothing left are not created. A store
// that cannot be read at all leaves the jar empty.
func (j *Jar) load() {
	all, err := j.prefs.All()
	if err != nil {
		j.log.Error("jar: load persisted cookies: %v", err)
		return
	}
	now := j.nowMs()
	skipped := 0
	for key, records := range all {
		if !strings.HasPrefix(key, KeyPrefix) {
			continue
		}
		host := strings.TrimPrefix(key, KeyPrefix)
		parsed, errs := ParseAll(records, host)
		skipped += len(errs)

		var live []Cookie
		for _, c := range parsed {
			if !c.Expired(now) {
				live = append(live, c)
			}
		}
		if len(live) > 0 {
			j.hosts[host] = live
		}
	}
	if skipped > 0 {
		j.log.Warning("jar: skipped %d malformed cookie records", skipped)
	}
	j.log.Debug("jar: loaded cookies for %d hosts", len(j.hosts))
}
