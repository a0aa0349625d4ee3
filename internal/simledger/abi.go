package simledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// IssuanceABI is the ABI of the emulated collection.
const IssuanceABI = `[
	{"type":"constructor","inputs":[
		{"name":"name_","type":"string"},
		{"name":"symbol_","type":"string"},
		{"name":"maxSupply_","type":"uint256"},
		{"name":"baseURI_","type":"string"}]},
	{"type":"function","name":"safeMint","stateMutability":"nonpayable",
		"inputs":[{"name":"to","type":"address"}],"outputs":[]},
	{"type":"function","name":"setPaused","stateMutability":"nonpayable",
		"inputs":[{"name":"paused_","type":"bool"}],"outputs":[]},
	{"type":"function","name":"paused","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view",
		"inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
		"inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"maxSupply","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view",
		"inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"owner","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"name","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true}]}
]`

// parsedABI is parsed once; IssuanceABI is a constant so failure is a bug.
var parsedABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(IssuanceABI))
	if err != nil {
		panic("simledger: invalid issuance ABI: " + err.Error())
	}
	return parsed
}()
