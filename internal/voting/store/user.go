// Package store provides the typed ledger accessors, one per entity kind.
// Each store owns its kind's persistence and status-filtered queries; all
// reads and writes go through the generic ledger repository.
package store

import (
	"github.com/hyperledger/fabric-chaincode-go/shim"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
)

// UserStore persists users under their natural key, the student id number.
type UserStore struct {
	repo *ledger.Repository
}

func NewUserStore(repo *ledger.Repository) *UserStore {
	return &UserStore{repo: repo}
}

// Create stamps the user with the transaction timestamp and writes it. The
// caller is responsible for the uniqueness check; Create overwrites blindly.
func (s *UserStore) Create(stub shim.ChaincodeStubInterface, user models.User) (models.User, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.User{}, err
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := s.repo.Save(stub, models.KindUser, user.StudentIDNumber, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) Get(stub shim.ChaincodeStubInterface, studentIDNumber string) (models.User, error) {
	var user models.User
	if err := s.repo.Get(stub, models.KindUser, studentIDNumber, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SetKycStatus mirrors a KYC application decision onto the user record.
func (s *UserStore) SetKycStatus(stub shim.ChaincodeStubInterface, studentIDNumber string, status models.KycStatus) (models.User, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	err = s.repo.Update(stub, models.KindUser, studentIDNumber, map[string]any{
		"kycStatus": status,
		"updatedAt": now,
	}, &user)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) Delete(stub shim.ChaincodeStubInterface, studentIDNumber string) error {
	return s.repo.Delete(stub, models.KindUser, studentIDNumber)
}
