package main

import (
	"os"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"campusvote/internal/platform/logger"
	"campusvote/internal/voting/contract"
)

func main() {
	log := logger.New()

	cc, err := contractapi.NewChaincode(contract.NewVotingSystemContract(log))
	if err != nil {
		log.Error("creating chaincode", "error", err)
		os.Exit(1)
	}

	if err := cc.Start(); err != nil {
		log.Error("starting chaincode", "error", err)
		os.Exit(1)
	}
}
