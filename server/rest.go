package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bospay/bosledger/ledger"
)

// AliveResponse is a response for alive and version check.
type AliveResponse struct {
	Alive      bool   `json:"alive"`
	APIVersion string `json:"api_version"`
	APIHeader  string `json:"api_header"`
}

func (s *server) alive(c *fiber.Ctx) error {
	return c.JSON(
		AliveResponse{
			Alive:      true,
			APIVersion: ApiVersion,
			APIHeader:  Header,
		})
}

const bearerPrefix = "Bearer "

// accountID resolves the requesting account from the bearer token. A missing,
// unknown, invalidated or expired token ends the request with 401.
func (s *server) accountID(c *fiber.Ctx) (string, error) {
	h := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", fiber.ErrUnauthorized
	}

	tkn, err := s.tokens.ReadToken(c.Context(), strings.TrimPrefix(h, bearerPrefix))
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			s.log.Error(fmt.Sprintf("token lookup failed: %s", err))
		}
		return "", fiber.ErrUnauthorized
	}
	if !tkn.Valid || tkn.Expired() {
		return "", fiber.ErrUnauthorized
	}

	return tkn.AccountID, nil
}

func mapLedgerErr(err error) error {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.ErrNotFound
	case errors.Is(err, ledger.ErrForbidden):
		return fiber.ErrForbidden
	case errors.Is(err, ledger.ErrConflict):
		return fiber.ErrConflict
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return fiber.ErrServiceUnavailable
	default:
		return fiber.ErrInternalServerError
	}
}

func (s *server) recordTrx(c *fiber.Ctx) error {
	accountID, err := s.accountID(c)
	if err != nil {
		return err
	}

	var req ledger.RecordRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("record transaction endpoint, message is empty or invalid: %s", err))
		return fiber.ErrBadRequest
	}

	trx, created, err := s.trxs.Record(c.Context(), accountID, req)
	if err != nil {
		s.log.Error(fmt.Sprintf("record transaction endpoint failed for account %s: %s", accountID, err))
		return mapLedgerErr(err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(trx)
}

func (s *server) listTrxs(c *fiber.Ctx) error {
	accountID, err := s.accountID(c)
	if err != nil {
		return err
	}

	trxs, err := s.trxs.List(c.Context(), accountID)
	if err != nil {
		s.log.Error(fmt.Sprintf("list transactions endpoint failed for account %s: %s", accountID, err))
		return mapLedgerErr(err)
	}

	return c.JSON(trxs)
}

func (s *server) readTrx(c *fiber.Ctx) error {
	accountID, err := s.accountID(c)
	if err != nil {
		return err
	}

	trx, err := s.trxs.Read(c.Context(), c.Params("id"), accountID)
	if err != nil {
		return mapLedgerErr(err)
	}

	return c.JSON(trx)
}

func (s *server) updateTrx(c *fiber.Ctx) error {
	accountID, err := s.accountID(c)
	if err != nil {
		return err
	}

	var req ledger.RecordRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("update transaction endpoint, message is empty or invalid: %s", err))
		return fiber.ErrBadRequest
	}

	trx, err := s.trxs.Update(c.Context(), c.Params("id"), accountID, req)
	if err != nil {
		s.log.Error(fmt.Sprintf("update transaction endpoint failed for account %s: %s", accountID, err))
		return mapLedgerErr(err)
	}

	return c.JSON(trx)
}

func (s *server) deleteTrx(c *fiber.Ctx) error {
	accountID, err := s.accountID(c)
	if err != nil {
		return err
	}

	if err := s.trxs.Delete(c.Context(), c.Params("id"), accountID); err != nil {
		s.log.Error(fmt.Sprintf("delete transaction endpoint failed for account %s: %s", accountID, err))
		return mapLedgerErr(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) readBalance(c *fiber.Ctx) error {
	accountID, err := s.accountID(c)
	if err != nil {
		return err
	}

	bal, err := s.balances.Read(c.Context(), accountID)
	if err != nil {
		s.log.Error(fmt.Sprintf("read balance endpoint failed for account %s: %s", accountID, err))
		return mapLedgerErr(err)
	}

	return c.JSON(bal)
}

func (s *server) adjustBalance(c *fiber.Ctx) error {
	accountID, err := s.accountID(c)
	if err != nil {
		return err
	}

	var req ledger.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("adjust balance endpoint, message is empty or invalid: %s", err))
		return fiber.ErrBadRequest
	}

	bal, err := s.balances.Adjust(c.Context(), accountID, req)
	if err != nil {
		s.log.Error(fmt.Sprintf("adjust balance endpoint failed for account %s: %s", accountID, err))
		return mapLedgerErr(err)
	}

	return c.JSON(bal)
}
