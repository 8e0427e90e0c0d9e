package locker

import "veledger/native/token"

// moduleVault is the ledger address holding all escrowed tokens. It has no
// known private key; tokens only leave through Withdraw.
var moduleVault = token.ModuleAddress("locker/escrow")
