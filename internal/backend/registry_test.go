// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import "testing"

func TestNewReturnsNoDeviceForUnknownBackend(t *testing.T) {
	if _, err := New("nonexistent-backend"); err == nil {
		t.Fatal("expected an error for an unregistered backend name")
	}
}

func TestAvailableListsRegisteredBackends(t *testing.T) {
	register("fake-test-backend", func() Player { return nil })
	defer delete(registry, "fake-test-backend")

	found := false
	for _, name := range Available() {
		if name == "fake-test-backend" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected Available() to include a freshly registered backend")
	}
}
