package httpapi

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/frostlog"
	"github.com/threshold-frost/frostd/internal/wire"
)

type testIdentity struct {
	id      wire.NodeID
	privKey *big.Int
	server  *Server
}

func newTestIdentity(t *testing.T, id wire.NodeID, cs *cryptosuite.Ciphersuite) testIdentity {
	t.Helper()
	b := make([]byte, 32)
	_, err := rand.Read(b)
	require.NoError(t, err)
	sk := new(big.Int).Mod(new(big.Int).SetBytes(b), cs.Curve().Order())
	return testIdentity{id: id, privKey: sk}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, out any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestDKGAndSigningOverHTTP(t *testing.T) {
	identityCS, err := cryptosuite.ForCurve(wire.CurveSecp256k1)
	require.NoError(t, err)

	ids := []wire.NodeID{"node-a", "node-b", "node-c"}
	identities := make(map[wire.NodeID]testIdentity, len(ids))
	nodes := make([]wire.Node, 0, len(ids))
	for _, id := range ids {
		ti := newTestIdentity(t, id, identityCS)
		pub := identityCS.Curve().EcBaseMul(ti.privKey)
		nodes = append(nodes, wire.Node{
			ID:        id,
			PublicKey: wire.HexStr(hex.EncodeToString(pub.X.Bytes())),
			CurveName: wire.CurveSecp256k1,
		})
		identities[id] = ti
	}
	party := config.NewPartyBook(nodes)

	log := frostlog.NewNop()
	for id, ti := range identities {
		settings := &config.NodeSettings{
			ID:         id,
			CurveName:  wire.CurveSecp256k1,
			PrivateKey: wire.HexStr(hex.EncodeToString(ti.privKey.Bytes())),
		}
		ti.server = NewServer(settings, party, log)
		identities[id] = ti
	}

	const minSigners = 2
	dkgID := wire.DKGID("dkg-http-test")

	round1Req := wire.DKGRound1Request{
		ID: dkgID, MaxSigners: len(ids), MinSigners: minSigners, PartyIDs: ids, Curve: wire.CurveSecp256k1,
	}

	broadcast := make(map[wire.NodeID]wire.DKGRound1NodeResponse, len(ids))
	for _, id := range ids {
		var resp wire.DKGRound1NodeResponse
		code := postJSON(t, identities[id].server.Router(), "/dkg/round1", round1Req, &resp)
		require.Equal(t, http.StatusOK, code, "round1 for %s", id)
		broadcast[id] = resp
	}

	round2Resp := make(map[wire.NodeID]wire.DKGRound2EncryptedPackage, len(ids))
	for _, id := range ids {
		req := wire.DKGRound2Request{ID: dkgID, BroadcastData: broadcast}
		var resp wire.DKGRound2EncryptedPackage
		code := postJSON(t, identities[id].server.Router(), "/dkg/round2", req, &resp)
		require.Equal(t, http.StatusOK, code, "round2 for %s", id)
		round2Resp[id] = resp
	}

	round3Resp := make(map[wire.NodeID]wire.DKGRound3NodeResponse, len(ids))
	for _, id := range ids {
		encrypted := make(map[wire.NodeID]string, len(ids)-1)
		for _, sender := range ids {
			if sender == id {
				continue
			}
			encrypted[sender] = round2Resp[sender].EncryptedPackage[id]
		}
		req := wire.DKGRound3Request{ID: dkgID, EncryptedPackage: wire.DKGRound2EncryptedPackage{EncryptedPackage: encrypted}}
		var resp wire.DKGRound3NodeResponse
		code := postJSON(t, identities[id].server.Router(), "/dkg/round3", req, &resp)
		require.Equal(t, http.StatusOK, code, "round3 for %s", id)
		round3Resp[id] = resp
	}

	groupKey := round3Resp[ids[0]].PubkeyPackage.VerifyingKey
	for _, id := range ids {
		require.Equal(t, groupKey, round3Resp[id].PubkeyPackage.VerifyingKey)
	}
	pubkeyPackage := round3Resp[ids[0]].PubkeyPackage

	signers := ids[:minSigners]
	commitments := make(map[wire.NodeID]wire.Commitment, len(signers))
	for _, id := range signers {
		commitReq := wire.CommitmentRequest{PubkeyPackage: pubkeyPackage, Curve: wire.CurveSecp256k1}
		var resp wire.Commitment
		code := postJSON(t, identities[id].server.Router(), "/sign/commitment", commitReq, &resp)
		require.Equal(t, http.StatusOK, code, "commitment for %s", id)
		commitments[id] = resp
	}

	message := []byte("message")
	sigID := wire.SignatureID("sig-1")
	signReq := wire.SignRequest{
		PubkeyPackage: pubkeyPackage,
		Curve:         wire.CurveSecp256k1,
		SigningsData: map[wire.SignatureID]wire.SigningEntry{
			sigID: {
				Data:        wire.SigningData{Message: wire.HexStr(hex.EncodeToString(message))},
				Commitments: commitments,
			},
		},
	}

	shares := make(map[wire.NodeID]*big.Int, len(signers))
	for _, id := range signers {
		var resp wire.SignResponse
		code := postJSON(t, identities[id].server.Router(), SignRoute, signReq, &resp)
		require.Equal(t, http.StatusOK, code, "sign for %s", id)
		sharePkg, ok := resp[sigID]
		require.True(t, ok)
		shareBytes, err := hex.DecodeString(string(sharePkg.Share))
		require.NoError(t, err)
		shares[id] = new(big.Int).SetBytes(shareBytes)
	}

	signingCS, err := cryptosuite.ForCurve(wire.CurveSecp256k1)
	require.NoError(t, err)
	groupKeyBytes, err := hex.DecodeString(string(groupKey))
	require.NoError(t, err)
	groupKeyPoint, err := signingCS.Curve().DeserializePoint(groupKeyBytes)
	require.NoError(t, err)

	coords := cryptosuite.NodeCoordinates(ids)
	sig, err := cryptosuite.Aggregate(signingCS, groupKeyPoint, message, commitments, coords, shares)
	require.NoError(t, err)
	require.True(t, cryptosuite.VerifyGroupSignature(signingCS, groupKeyPoint, message, sig))
}
