package contract

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
	"campusvote/pkg/platform/sentinel"
)

// GetKycApplicationListByStatus returns every KYC application in the given
// status. Admin only.
func (c *VotingSystemContract) GetKycApplicationListByStatus(ctx contractapi.TransactionContextInterface, studentIDNumber, status string) (string, error) {
	stub := ctx.GetStub()

	if _, err := c.protect(stub, studentIDNumber, adminOnly); err != nil {
		return "", err
	}

	target := models.KycStatus(status)
	if !target.Valid() {
		return "", fmt.Errorf("unknown KYC status %q: %w", status, sentinel.ErrInvalidArgument)
	}

	apps, err := c.kycApps.ByStatus(stub, target)
	if err != nil {
		return "", err
	}
	return jsonResult(apps)
}

// UpdateKycApplicationStatus decides a KYC application and mirrors the
// decision onto the linked user's kycStatus. The two records must never
// diverge; both writes commit or fail together with the transaction.
func (c *VotingSystemContract) UpdateKycApplicationStatus(ctx contractapi.TransactionContextInterface, studentIDNumber, kycApplicationID, status string) (string, error) {
	stub := ctx.GetStub()

	if _, err := c.protect(stub, studentIDNumber, adminOnly); err != nil {
		return "", err
	}

	target := models.KycStatus(status)
	if target != models.KycStatusApproved && target != models.KycStatusRejected {
		return "", fmt.Errorf("KYC application may only be set to %s or %s, got %q: %w",
			models.KycStatusApproved, models.KycStatusRejected, status, sentinel.ErrInvalidArgument)
	}

	app, err := c.kycApps.SetStatus(stub, kycApplicationID, target)
	if err != nil {
		if ledger.IsNotFound(err) {
			return "", fmt.Errorf("KYC application %s does not exist: %w", kycApplicationID, sentinel.ErrNotFound)
		}
		return "", err
	}

	if _, err := c.users.SetKycStatus(stub, app.UserID, target); err != nil {
		if ledger.IsNotFound(err) {
			return "", fmt.Errorf("user %s linked to KYC application %s does not exist: %w", app.UserID, kycApplicationID, sentinel.ErrNotFound)
		}
		return "", err
	}

	c.log.Info("KYC application decided", "kycApplicationId", app.ID, "userId", app.UserID, "status", target)
	return jsonResult(app)
}
