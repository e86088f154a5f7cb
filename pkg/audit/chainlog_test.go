package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainLogAppendAndVerify(t *testing.T) {
	ctx := context.Background()

	cl, err := OpenChainLog(":memory:")
	require.NoError(t, err)
	defer cl.Close()

	e1, err := cl.Append(ctx, `{"event":"wallet.credited","user_id":"u1","amount":200}`)
	require.NoError(t, err)
	e2, err := cl.Append(ctx, `{"event":"wallet.debited","user_id":"u1","amount":50}`)
	require.NoError(t, err)

	assert.Equal(t, e1.Hash, e2.PreviousHash)

	ok, err := cl.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	ctx := context.Background()

	cl, err := OpenChainLog(":memory:")
	require.NoError(t, err)
	defer cl.Close()

	for _, payload := range []string{"credit u1 200", "debit u1 50", "credit u2 75"} {
		_, err := cl.Append(ctx, payload)
		require.NoError(t, err)
	}

	entries, err := cl.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.True(t, VerifyChain(entries))

	// Tamper with the middle payload
	original := entries[1].Payload
	entries[1].Payload = "debit u1 5000"
	assert.False(t, VerifyChain(entries))

	// Restore payload, break the link instead
	entries[1].Payload = original
	entries[2].PreviousHash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	assert.False(t, VerifyChain(entries))
}

func TestChainLogResumesFromPersistedHead(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/audit.db"

	cl, err := OpenChainLog(path)
	require.NoError(t, err)
	first, err := cl.Append(ctx, "credit u1 100")
	require.NoError(t, err)
	require.NoError(t, cl.Close())

	// Reopen and continue the chain
	cl2, err := OpenChainLog(path)
	require.NoError(t, err)
	defer cl2.Close()

	second, err := cl2.Append(ctx, "debit u1 40")
	require.NoError(t, err)
	assert.Equal(t, first.Hash, second.PreviousHash)

	ok, err := cl2.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
