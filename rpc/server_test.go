package rpc

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"veledger/core"
	"veledger/core/types"
	"veledger/native/locker"
	"veledger/storage"
)

var (
	governor = types.Address{0x01}
	alice    = types.Address{0x0A}
)

func newTestServer(t *testing.T) (*httptest.Server, *core.Processor) {
	t.Helper()
	proc, err := core.NewProcessor(storage.NewMemDB(), core.ProcessorConfig{
		LockSymbol: "SOLACE",
		Governor:   governor,
		Allocations: []core.TokenAllocation{
			{Symbol: "SOLACE", To: alice, Amount: big.NewInt(10_000)},
		},
	})
	require.NoError(t, err)
	now := uint64(1_700_000_000)
	proc.SetNowFunc(func() uint64 { return now })

	srv := httptest.NewServer(NewServer(proc, nil).Router())
	t.Cleanup(srv.Close)
	return srv, proc
}

func getJSON(t *testing.T, srv *httptest.Server, path string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode, "path %s", path)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	var supply map[string]string
	getJSON(t, srv, "/v1/token/SOLACE/supply", http.StatusOK, &supply)
	require.Equal(t, "10000", supply["supply"])

	var balance map[string]string
	getJSON(t, srv, "/v1/token/SOLACE/balance/"+alice.Hex(), http.StatusOK, &balance)
	require.Equal(t, "10000", balance["balance"])

	getJSON(t, srv, "/v1/token/SOLACE/balance/zz", http.StatusBadRequest, nil)
}

func TestLockRoutes(t *testing.T) {
	srv, proc := newTestServer(t)

	end := uint64(1_700_000_000) + 8*locker.SecondsPerWeek
	id, err := proc.CreateLock(alice, alice, big.NewInt(4000), end)
	require.NoError(t, err)

	var lock lockResponse
	getJSON(t, srv, "/v1/locks/1", http.StatusOK, &lock)
	require.Equal(t, id, lock.ID)
	require.Equal(t, alice.Hex(), lock.Owner)
	require.Equal(t, alice.Hex(), lock.Delegatee)
	require.Equal(t, "4000", lock.Amount)
	require.Equal(t, end, lock.End)

	var locks map[string][]uint64
	getJSON(t, srv, "/v1/accounts/"+alice.Hex()+"/locks", http.StatusOK, &locks)
	require.Equal(t, []uint64{1}, locks["owned"])
	require.Equal(t, []uint64{1}, locks["delegated"])

	var total map[string]string
	getJSON(t, srv, "/v1/locks/total", http.StatusOK, &total)
	require.Equal(t, "4000", total["totalLocked"])

	getJSON(t, srv, "/v1/locks/99", http.StatusNotFound, nil)
}

func TestBondRoutesUnknownTeller(t *testing.T) {
	srv, _ := newTestServer(t)
	getJSON(t, srv, "/v1/bonds/nope", http.StatusNotFound, nil)
}

func TestGovRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	var gov map[string]string
	getJSON(t, srv, "/v1/gov", http.StatusOK, &gov)
	require.Equal(t, governor.Hex(), gov["governor"])
	require.Equal(t, types.Address{}.Hex(), gov["pending"])
}

func TestAirdropAndScpRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	var claimed map[string]bool
	getJSON(t, srv, "/v1/airdrop/"+alice.Hex(), http.StatusOK, &claimed)
	require.False(t, claimed["claimed"])

	var scp map[string]string
	getJSON(t, srv, "/v1/scp/"+alice.Hex(), http.StatusOK, &scp)
	require.Equal(t, "0", scp["balance"])
	require.Equal(t, "0", scp["minRequired"])

	var scpSupply map[string]string
	getJSON(t, srv, "/v1/scp/supply", http.StatusOK, &scpSupply)
	require.Equal(t, "0", scpSupply["supply"])
}
