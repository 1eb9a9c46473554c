package hyprland

import (
	"testing"
	"time"
)

func TestQueryCacheSkipsRepliesFromBeforeFlush(t *testing.T) {
	c := newQueryCache(time.Minute, nil)

	stale := c.begin()
	c.flush()
	if c.set("j/clients", []byte("[]"), stale) {
		t.Fatal("reply requested before the flush was stored")
	}
	if _, ok := c.get("j/clients"); ok {
		t.Fatal("stale reply is served from the cache")
	}

	fresh := c.begin()
	if !c.set("j/clients", []byte("[]"), fresh) {
		t.Fatal("reply with the current generation was not stored")
	}
	if reply, ok := c.get("j/clients"); !ok || string(reply) != "[]" {
		t.Fatalf("get = %q, %v", reply, ok)
	}
}

func TestDisabledQueryCache(t *testing.T) {
	c := newQueryCache(0, nil)
	if c != nil {
		t.Fatal("zero TTL should disable the cache")
	}
	if c.set("j/clients", []byte("[]"), c.begin()) {
		t.Fatal("disabled cache stored a reply")
	}
	c.flush()
	if _, ok := c.get("j/clients"); ok {
		t.Fatal("disabled cache returned a reply")
	}
}
