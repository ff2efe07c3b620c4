package contract

import (
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
	"campusvote/pkg/platform/sentinel"
)

// GuardOptions declares the access policy of a protected method. A nil or
// empty role set admits every registered user.
type GuardOptions struct {
	Roles      []models.UserRole
	RequireKyc bool
}

// The per-method policies. Composing them at the top of each method keeps the
// authorization rules declarative and out of the method bodies.
var (
	anyRegistered      = GuardOptions{}
	adminOnly          = GuardOptions{Roles: []models.UserRole{models.RoleAdmin}}
	studentOnly        = GuardOptions{Roles: []models.UserRole{models.RoleStudent}}
	kycApprovedStudent = GuardOptions{Roles: []models.UserRole{models.RoleStudent}, RequireKyc: true}
)

// protect loads the calling user and enforces opts before any method logic
// runs. It returns the caller's record so methods do not re-read it.
func (c *VotingSystemContract) protect(stub shim.ChaincodeStubInterface, studentIDNumber string, opts GuardOptions) (models.User, error) {
	user, err := c.users.Get(stub, studentIDNumber)
	if err != nil {
		if ledger.IsNotFound(err) {
			return models.User{}, fmt.Errorf("user with student id %s does not exist: %w", studentIDNumber, sentinel.ErrNotFound)
		}
		return models.User{}, err
	}

	if len(opts.Roles) > 0 && !roleAllowed(user.Role, opts.Roles) {
		c.log.Warn("denied by role", "studentIdNumber", studentIDNumber, "role", user.Role)
		return models.User{}, fmt.Errorf("forbidden by role: %v allowed, %s provided: %w", opts.Roles, user.Role, sentinel.ErrForbidden)
	}

	if opts.RequireKyc && user.KycStatus != models.KycStatusApproved {
		c.log.Warn("denied by KYC status", "studentIdNumber", studentIDNumber, "kycStatus", user.KycStatus)
		return models.User{}, fmt.Errorf("forbidden by KYC status: %w", sentinel.ErrForbidden)
	}

	return user, nil
}

func roleAllowed(role models.UserRole, allowed []models.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
