// Package fabric connects the gateway to a peer and adapts the contract API
// to the Invoker interface the HTTP handlers use.
package fabric

import (
	"context"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/hyperledger/fabric-gateway/pkg/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// Config locates the peer and the client's enrollment material on disk.
type Config struct {
	PeerEndpoint string
	// GatewayPeer is the TLS server name the peer's certificate was issued for.
	GatewayPeer string
	TLSCertPath string
	MSPID       string
	CertPath    string
	KeyPath     string
	Channel     string
	Chaincode   string
}

// Client is a live connection to one contract on one channel.
type Client struct {
	conn     *grpc.ClientConn
	gw       *client.Gateway
	contract *client.Contract
}

// Connect dials the peer over TLS and opens a Fabric Gateway session with the
// configured identity.
func Connect(cfg Config) (*Client, error) {
	tlsPEM, err := os.ReadFile(cfg.TLSCertPath)
	if err != nil {
		return nil, fmt.Errorf("reading peer TLS certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(tlsPEM) {
		return nil, fmt.Errorf("no certificates in %s", cfg.TLSCertPath)
	}
	creds := credentials.NewClientTLSFromCert(pool, cfg.GatewayPeer)

	conn, err := grpc.NewClient(cfg.PeerEndpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dialing peer %s: %w", cfg.PeerEndpoint, err)
	}

	id, err := newIdentity(cfg.MSPID, cfg.CertPath)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	sign, err := newSigner(cfg.KeyPath)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	gw, err := client.Connect(id,
		client.WithSign(sign),
		client.WithClientConnection(conn),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting gateway: %w", err)
	}

	contract := gw.GetNetwork(cfg.Channel).GetContract(cfg.Chaincode)
	return &Client{conn: conn, gw: gw, contract: contract}, nil
}

func newIdentity(mspID, certPath string) (*identity.X509Identity, error) {
	pem, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("reading enrollment certificate: %w", err)
	}
	cert, err := identity.CertificateFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing enrollment certificate: %w", err)
	}
	id, err := identity.NewX509Identity(mspID, cert)
	if err != nil {
		return nil, fmt.Errorf("building identity: %w", err)
	}
	return id, nil
}

func newSigner(keyPath string) (identity.Sign, error) {
	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	key, err := identity.PrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	sign, err := identity.NewPrivateKeySign(key)
	if err != nil {
		return nil, fmt.Errorf("building signer: %w", err)
	}
	return sign, nil
}

// Evaluate runs a read-only query against the connected peer.
func (c *Client) Evaluate(ctx context.Context, method string, args ...string) ([]byte, error) {
	return c.contract.EvaluateWithContext(ctx, method, client.WithArguments(args...))
}

// Submit sends a transaction through ordering and waits for it to commit.
func (c *Client) Submit(ctx context.Context, method string, args ...string) ([]byte, error) {
	return c.contract.SubmitWithContext(ctx, method, client.WithArguments(args...))
}

func (c *Client) Close() error {
	_ = c.gw.Close()
	return c.conn.Close()
}
