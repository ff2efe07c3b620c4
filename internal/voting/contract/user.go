package contract

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
	"campusvote/pkg/platform/sentinel"
)

// RegisterUser creates a new STUDENT with a PENDING KYC status and opens the
// linked PENDING KYC application. Open to anyone; the student id number is
// the natural key and must be unused.
func (c *VotingSystemContract) RegisterUser(ctx contractapi.TransactionContextInterface, firstName, lastName, studentIDNumber, passwordHash, secretKeyHash string) error {
	stub := ctx.GetStub()

	_, err := c.users.Get(stub, studentIDNumber)
	if err == nil {
		return fmt.Errorf("user with this student id already exists in the system: %w", sentinel.ErrConflict)
	}
	if !ledger.IsNotFound(err) {
		return err
	}

	user := models.User{
		StudentIDNumber: studentIDNumber,
		FirstName:       firstName,
		LastName:        lastName,
		PasswordHash:    passwordHash,
		SecretKeyHash:   secretKeyHash,
		KycStatus:       models.KycStatusPending,
		Role:            models.RoleStudent,
	}
	if _, err := c.users.Create(stub, user); err != nil {
		return err
	}
	if _, err := c.kycApps.Create(stub, studentIDNumber); err != nil {
		return err
	}

	c.log.Info("user registered", "studentIdNumber", studentIDNumber)
	return nil
}

// GetExistingUser returns the full user record including credential hashes.
// Callers may always read their own record (the gateway's login flow depends
// on that); reading anyone else's requires the ADMIN role.
func (c *VotingSystemContract) GetExistingUser(ctx contractapi.TransactionContextInterface, studentIDNumber, targetStudentIDNumber string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, anyRegistered)
	if err != nil {
		return "", err
	}
	if caller.StudentIDNumber == targetStudentIDNumber {
		return jsonResult(caller)
	}
	if caller.Role != models.RoleAdmin {
		return "", fmt.Errorf("forbidden by role: only %s may read other users: %w", models.RoleAdmin, sentinel.ErrForbidden)
	}

	target, err := c.users.Get(stub, targetStudentIDNumber)
	if err != nil {
		if ledger.IsNotFound(err) {
			return "", fmt.Errorf("user with student id %s does not exist: %w", targetStudentIDNumber, sentinel.ErrNotFound)
		}
		return "", err
	}
	return jsonResult(target)
}

// userInfo is the credential-free view of a user returned to the client.
type userInfo struct {
	StudentIDNumber string           `json:"studentIdNumber"`
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	KycStatus       models.KycStatus `json:"kycStatus"`
	Role            models.UserRole  `json:"role"`
	CreatedAt       int64            `json:"createdAt"`
	UpdatedAt       int64            `json:"updatedAt"`
}

// GetCurrentUserInfo returns the caller's own record without the hashes.
func (c *VotingSystemContract) GetCurrentUserInfo(ctx contractapi.TransactionContextInterface, studentIDNumber string) (string, error) {
	user, err := c.protect(ctx.GetStub(), studentIDNumber, anyRegistered)
	if err != nil {
		return "", err
	}
	return jsonResult(userInfo{
		StudentIDNumber: user.StudentIDNumber,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		KycStatus:       user.KycStatus,
		Role:            user.Role,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	})
}

// IsAuthenticated confirms the caller resolves to a registered user. The
// gateway uses it as a cheap token health check.
func (c *VotingSystemContract) IsAuthenticated(ctx contractapi.TransactionContextInterface, studentIDNumber string) (string, error) {
	user, err := c.protect(ctx.GetStub(), studentIDNumber, anyRegistered)
	if err != nil {
		return "", err
	}
	return jsonResult(map[string]any{
		"authenticated":   true,
		"studentIdNumber": user.StudentIDNumber,
	})
}

// IsKycVerified reports whether the caller's KYC application was approved.
func (c *VotingSystemContract) IsKycVerified(ctx contractapi.TransactionContextInterface, studentIDNumber string) (string, error) {
	user, err := c.protect(ctx.GetStub(), studentIDNumber, anyRegistered)
	if err != nil {
		return "", err
	}
	return jsonResult(map[string]any{
		"kycVerified": user.KycStatus == models.KycStatusApproved,
	})
}
