// Package gateway is the HTTP front of the voting system. It authenticates
// browser clients, issues session tokens and relays named contract
// invocations to the Fabric network. The gateway holds no business state;
// every decision of record happens in the chaincode.
package gateway

import "context"

// Invoker submits and evaluates contract transactions. The production
// implementation wraps a Fabric Gateway connection; tests use a fake.
type Invoker interface {
	// Evaluate runs a read-only query against a single peer.
	Evaluate(ctx context.Context, method string, args ...string) ([]byte, error)
	// Submit sends a transaction through ordering and waits for commit.
	Submit(ctx context.Context, method string, args ...string) ([]byte, error)
}

// protectedMethods are the contract methods that take the caller's student id
// number as their first business argument. The gateway injects it from the
// session token; it is never accepted from the request body.
var protectedMethods = map[string]bool{
	"IsAuthenticated":               true,
	"IsKycVerified":                 true,
	"GetKycApplicationListByStatus": true,
	"UpdateKycApplicationStatus":    true,
	"GetCurrentUserInfo":            true,
	"GetExistingUser":               true,
	"CreatePoll":                    true,
	"AddPollOption":                 true,
	"DeletePollOption":              true,
	"AddPollQuestion":               true,
	"DeletePollQuestion":            true,
	"GetPollsListInReviewStatus":    true,
	"UpdatePollReviewStatus":        true,
	"UpdatePoll":                    true,
	"StartPoll":                     true,
	"StopPoll":                      true,
	"GiveVote":                      true,
	"GetPollById":                   true,
	"GetPollOptionsByPollId":        true,
	"GetActivePolls":                true,
	"GetFinishedPolls":              true,
	"GetMyPendingPolls":             true,
}

// MethodIsProtected reports whether the contract method requires an
// authenticated caller.
func MethodIsProtected(method string) bool {
	return protectedMethods[method]
}
