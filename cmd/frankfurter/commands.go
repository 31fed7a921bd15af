package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/samvad-hq/frankfurter/pkg/frankfurter"
)

var errUnavailable = errors.New("unavailable")

var commands = map[string]func(ctx context.Context, inv *invocation) error{
	"convert":    runConvert,
	"period":     runPeriod,
	"currencies": runCurrencies,
	"ping":       runPing,
}

func runConvert(ctx context.Context, inv *invocation) error {
	amount, from, to, err := rateFilters(inv)
	if err != nil {
		return err
	}
	date, err := optionalDate("date", mustString(inv.flags, "date"))
	if err != nil {
		return err
	}

	resp, err := inv.client.Convert(ctx, frankfurter.ConvertRequest{
		Date:   date,
		Amount: amount,
		From:   from,
		To:     to,
	})
	if err != nil {
		return err
	}
	return inv.out.write(inv.stdout, resp)
}

func runPeriod(ctx context.Context, inv *invocation) error {
	amount, from, to, err := rateFilters(inv)
	if err != nil {
		return err
	}
	start, err := optionalDate("start", mustString(inv.flags, "start"))
	if err != nil {
		return err
	}
	end, err := optionalDate("end", mustString(inv.flags, "end"))
	if err != nil {
		return err
	}

	resp, err := inv.client.Period(ctx, frankfurter.PeriodRequest{
		Start:  start,
		End:    end,
		Amount: amount,
		From:   from,
		To:     to,
	})
	if err != nil {
		return err
	}
	return inv.out.write(inv.stdout, resp)
}

func runCurrencies(ctx context.Context, inv *invocation) error {
	resp, err := inv.client.Currencies(ctx, frankfurter.CurrenciesRequest{})
	if err != nil {
		return err
	}
	return inv.out.write(inv.stdout, resp)
}

func runPing(ctx context.Context, inv *invocation) error {
	if !inv.client.IsServerAvailable(ctx) {
		fmt.Fprintln(inv.stdout, "unavailable")
		return fmt.Errorf("%s: %w", inv.client.URL().Host, errUnavailable)
	}
	fmt.Fprintln(inv.stdout, "available")
	return nil
}

func rateFilters(inv *invocation) (decimal.Decimal, frankfurter.Currency, []frankfurter.Currency, error) {
	var amount decimal.Decimal
	if raw := strings.TrimSpace(mustString(inv.flags, "amount")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, "", nil, fmt.Errorf("invalid --amount %q: %w", raw, err)
		}
		amount = parsed
	}
	from := frankfurter.ParseCurrency(mustString(inv.flags, "from"))
	to := frankfurter.ParseCurrencies(mustString(inv.flags, "to"))
	return amount, from, to, nil
}

func optionalDate(flag, raw string) (frankfurter.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return frankfurter.Date{}, nil
	}
	d, err := frankfurter.ParseDate(raw)
	if err != nil {
		return frankfurter.Date{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return d, nil
}
