package ids

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateIsUniqueUnderConcurrency(t *testing.T) {
	const perWorker = 500
	const workers = 8

	var mu sync.Mutex
	seen := make(map[int64]struct{}, perWorker*workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, Generate())
			}
			mu.Lock()
			for _, id := range local {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
}

func TestPrefixedIDs(t *testing.T) {
	if id := NewChatID(); !strings.HasPrefix(id, "CHAT") || len(id) <= len("CHAT") {
		t.Fatalf("bad chat id: %s", id)
	}
	if id := NewMessageID(); !strings.HasPrefix(id, "MSG") || len(id) <= len("MSG") {
		t.Fatalf("bad message id: %s", id)
	}
}
