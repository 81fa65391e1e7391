package navigator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PublicationIngest/internal/ports"
)

func newPagedServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `
		<html><body>
		  <a href="/research/foundation/a">A</a>
		  <li aria-label="Next"><a href="/list2">Next</a></li>
		</body></html>`)
	})
	mux.HandleFunc("/list2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `
		<html><body>
		  <a href="/research/foundation/b">B</a>
		</body></html>`)
	})
	return httptest.NewServer(mux)
}

func TestStaticSessionReadsAbsoluteHrefs(t *testing.T) {
	t.Parallel()

	server := newPagedServer()
	defer server.Close()

	factory := NewStaticFactory(server.Client())
	session, err := factory.NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer session.Close()

	ctx := context.Background()
	if err := session.Navigate(ctx, server.URL+"/list"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	hrefs, err := session.ReadAttributes(ctx, `a[href*="/research/foundation"]`, "href")
	if err != nil {
		t.Fatalf("ReadAttributes: %v", err)
	}
	if len(hrefs) != 1 || hrefs[0] != server.URL+"/research/foundation/a" {
		t.Fatalf("unexpected hrefs: %v", hrefs)
	}
}

func TestStaticSessionClickFollowsNestedLink(t *testing.T) {
	t.Parallel()

	server := newPagedServer()
	defer server.Close()

	factory := NewStaticFactory(server.Client())
	session, _ := factory.NewSession(context.Background())
	defer session.Close()

	ctx := context.Background()
	if err := session.Navigate(ctx, server.URL+"/list"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	if err := session.WaitForClickable(ctx, `li[aria-label="Next"]`, time.Second); err != nil {
		t.Fatalf("WaitForClickable: %v", err)
	}
	if err := session.Click(ctx, `li[aria-label="Next"]`); err != nil {
		t.Fatalf("Click: %v", err)
	}

	hrefs, err := session.ReadAttributes(ctx, `a[href*="/research/foundation"]`, "href")
	if err != nil {
		t.Fatalf("ReadAttributes: %v", err)
	}
	if len(hrefs) != 1 || hrefs[0] != server.URL+"/research/foundation/b" {
		t.Fatalf("expected second page link, got %v", hrefs)
	}

	// Second page has no pagination control.
	err = session.WaitForClickable(ctx, `li[aria-label="Next"]`, time.Second)
	if !errors.Is(err, ports.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}

func TestStaticSessionPresence(t *testing.T) {
	t.Parallel()

	server := newPagedServer()
	defer server.Close()

	factory := NewStaticFactory(server.Client())
	session, _ := factory.NewSession(context.Background())
	defer session.Close()

	ctx := context.Background()
	if err := session.Navigate(ctx, server.URL+"/list"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	if err := session.WaitForPresence(ctx, "a", time.Second); err != nil {
		t.Fatalf("WaitForPresence: %v", err)
	}
	if err := session.WaitForPresence(ctx, "table", time.Second); !errors.Is(err, ports.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}
