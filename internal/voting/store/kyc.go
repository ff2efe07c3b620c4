package store

import (
	"strconv"

	"github.com/hyperledger/fabric-chaincode-go/shim"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
)

// KycApplicationStore persists KYC applications under sequence-assigned ids.
type KycApplicationStore struct {
	repo *ledger.Repository
}

func NewKycApplicationStore(repo *ledger.Repository) *KycApplicationStore {
	return &KycApplicationStore{repo: repo}
}

// Create opens a PENDING application for the user and assigns the next
// sequence id.
func (s *KycApplicationStore) Create(stub shim.ChaincodeStubInterface, userID string) (models.KYCApplication, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.KYCApplication{}, err
	}
	seq, err := s.repo.NextSequenceID(stub, models.KindKycApplication)
	if err != nil {
		return models.KYCApplication{}, err
	}
	app := models.KYCApplication{
		ID:        strconv.FormatInt(seq, 10),
		UserID:    userID,
		Status:    models.KycStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(stub, models.KindKycApplication, app.ID, app); err != nil {
		return models.KYCApplication{}, err
	}
	return app, nil
}

func (s *KycApplicationStore) Get(stub shim.ChaincodeStubInterface, id string) (models.KYCApplication, error) {
	var app models.KYCApplication
	if err := s.repo.Get(stub, models.KindKycApplication, id, &app); err != nil {
		return models.KYCApplication{}, err
	}
	return app, nil
}

func (s *KycApplicationStore) SetStatus(stub shim.ChaincodeStubInterface, id string, status models.KycStatus) (models.KYCApplication, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.KYCApplication{}, err
	}
	var app models.KYCApplication
	err = s.repo.Update(stub, models.KindKycApplication, id, map[string]any{
		"status":    status,
		"updatedAt": now,
	}, &app)
	if err != nil {
		return models.KYCApplication{}, err
	}
	return app, nil
}

// ByStatus scans all applications and keeps the ones matching status.
func (s *KycApplicationStore) ByStatus(stub shim.ChaincodeStubInterface, status models.KycStatus) ([]models.KYCApplication, error) {
	cur, err := s.repo.Scan(stub, models.KindKycApplication)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	apps := []models.KYCApplication{}
	for {
		var app models.KYCApplication
		_, ok, err := cur.Next(&app)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if app.Status == status {
			apps = append(apps, app)
		}
	}
	return apps, nil
}
