package wallet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

var (
	ErrNoAccounts          = errors.New("at least one account is required")
	ErrInvalidDefaultIndex = errors.New("default account index does not match any account")
	ErrInvalidCurrency     = errors.New("unknown wallet currency")
	ErrInvalidAddress      = errors.New("invalid receive address")
)

type Account struct {
	Index          int    `json:"index"`
	Label          string `json:"label"`
	ReceiveAddress string `json:"receive_address"`
}

func (a Account) GetIndex() int {
	return a.Index
}

func (a Account) GetLabel() string {
	return a.Label
}

func (a Account) GetReceiveAddress() string {
	return a.ReceiveAddress
}

// LoginInfo is what the wallet shares with the daemon on login.
type LoginInfo struct {
	Accounts            []Account         `json:"accounts"`
	DefaultAccountIndex int               `json:"default_account_index"`
	Currency            string            `json:"currency"`
	ExternalData        bool              `json:"external_data"`
	PartnerTokens       map[string]string `json:"partner_tokens"`
}

// Service holds the state of the wallet the daemon is running for. It's
// populated on login and wiped on logout.
type Service struct {
	params *chaincfg.Params

	lock     sync.RWMutex
	loggedIn bool
	info     LoginInfo
}

func NewService(network string) *Service {
	params := &chaincfg.MainNetParams
	if network == "testnet" {
		params = &chaincfg.TestNet3Params
	}
	return &Service{params: params}
}

func (s *Service) Login(info LoginInfo) error {
	if err := s.validate(info); err != nil {
		return err
	}

	tokens := make(map[string]string, len(info.PartnerTokens))
	for k, v := range info.PartnerTokens {
		tokens[k] = v
	}
	info.PartnerTokens = tokens
	info.Accounts = append([]Account{}, info.Accounts...)

	s.lock.Lock()
	defer s.lock.Unlock()
	s.info = info
	s.loggedIn = true
	return nil
}

func (s *Service) Logout() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.info = LoginInfo{}
	s.loggedIn = false
}

func (s *Service) IsLoggedIn() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.loggedIn
}

func (s *Service) HasExternalData() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.info.ExternalData
}

func (s *Service) Accounts() []ports.Account {
	s.lock.RLock()
	defer s.lock.RUnlock()

	accounts := make([]ports.Account, 0, len(s.info.Accounts))
	for _, a := range s.info.Accounts {
		accounts = append(accounts, a)
	}
	return accounts
}

func (s *Service) DefaultAccountIndex() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.info.DefaultAccountIndex
}

func (s *Service) Currency() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.info.Currency
}

func (s *Service) PartnerToken(exchange string) string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.info.PartnerTokens[exchange]
}

func (s *Service) validate(info LoginInfo) error {
	if len(info.Accounts) <= 0 {
		return ErrNoAccounts
	}
	if _, ok := domain.LookupCurrency(info.Currency); !ok {
		return ErrInvalidCurrency
	}

	foundDefault := false
	for _, a := range info.Accounts {
		if a.Index == info.DefaultAccountIndex {
			foundDefault = true
		}
		if a.ReceiveAddress == "" {
			continue
		}
		addr, err := btcutil.DecodeAddress(a.ReceiveAddress, s.params)
		if err != nil || !addr.IsForNet(s.params) {
			return fmt.Errorf(
				"%w %s for account %d", ErrInvalidAddress, a.ReceiveAddress, a.Index,
			)
		}
	}
	if !foundDefault {
		return ErrInvalidDefaultIndex
	}
	return nil
}
