package main

import (
	"testing"

	pnldomain "github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/stretchr/testify/assert"
)

func TestResultFileName(t *testing.T) {
	name := resultFileName(pnldomain.ComputeRequest{SiteIDs: []string{"0101", "Harbor Hotel"}, Year: 2025})
	assert.Equal(t, "pnl-2025-0101-harbor-hotel.json", name)
}

func TestResultFileNameIsBounded(t *testing.T) {
	ids := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, "site-number")
	}
	name := resultFileName(pnldomain.ComputeRequest{SiteIDs: ids, Year: 2025})
	assert.LessOrEqual(t, len(name), 125)
	assert.NotContains(t, name, "-.json")
}

func TestReadVersionFromEnv(t *testing.T) {
	t.Setenv("APP_VERSION", " 1.4.0 ")
	assert.Equal(t, "1.4.0", readVersionFromEnv())

	t.Setenv("APP_VERSION", "")
	assert.Equal(t, "dev", readVersionFromEnv())
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"compute", "migrate", "serve"}, names)
}
