package replication_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/replication"
)

func TestStaticPolicy_ReturnsDistinctHosts(t *testing.T) {
	hosts := []string{"h1:8080", "h2:8080", "h3:8080", "h4:8080"}
	p := replication.NewStaticPolicy(hosts, 3)

	var key [20]byte
	key[0] = 7

	replicas := p.ReplicasFor(key)
	require.Len(t, replicas, 3)

	seen := map[string]bool{}
	for _, h := range replicas {
		require.False(t, seen[h], "host %s returned twice", h)
		seen[h] = true
	}
}

func TestStaticPolicy_StableForSameKey(t *testing.T) {
	hosts := []string{"h1:8080", "h2:8080", "h3:8080"}
	p := replication.NewStaticPolicy(hosts, 2)

	var key [20]byte
	key[0], key[1] = 9, 200

	first := p.ReplicasFor(key)
	second := p.ReplicasFor(key)
	require.Equal(t, first, second)
}

func TestStaticPolicy_ClampsReplicaN(t *testing.T) {
	p := replication.NewStaticPolicy([]string{"h1:8080"}, 5)
	require.Equal(t, 1, p.ReplicaN)
}

func TestStaticPolicy_NoHosts(t *testing.T) {
	p := &replication.StaticPolicy{}
	var key [20]byte
	require.Nil(t, p.ReplicasFor(key))
}
