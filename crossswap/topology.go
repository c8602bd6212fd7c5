package crossswap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

// quoteB2B bridge only
func (p *pipeline) quoteB2B(ctx context.Context) (*tokens.CrossSwapQuotes, error) {
	cs := p.crossSwap
	recipient, err := p.strategy.GetBridgeQuoteRecipient(cs, false)
	if err != nil {
		return nil, err
	}
	bridgeQuote, appFee, err := p.bridgeToOutput(ctx, cs.InputToken, recipient, nil, func(appFee *tokens.AppFee) ([]byte, error) {
		return p.strategy.GetBridgeQuoteMessage(cs, appFee, nil)
	})
	if err != nil {
		return nil, err
	}
	return p.newQuotes(bridgeQuote, nil, nil, appFee)
}

// bridgeToOutput bridge into the requested output token.
// Exact input quotes rebuild the message once the output and so the app fee is known.
func (p *pipeline) bridgeToOutput(ctx context.Context, bridgeInput tokens.Token, recipient common.Address, exactInput *big.Int, buildMessage func(*tokens.AppFee) ([]byte, error)) (*tokens.BridgeQuote, *tokens.AppFee, error) {
	cs := p.crossSwap
	if cs.IsOutputDirected() {
		gross, appFee := p.grossOutput()
		message, err := buildMessage(appFee)
		if err != nil {
			return nil, nil, err
		}
		bridgeQuote, err := p.strategy.GetQuoteForOutput(ctx, &tokens.OutputQuoteParams{
			InputToken:       bridgeInput,
			OutputToken:      cs.OutputToken,
			MinOutputAmount:  gross,
			ForceExactOutput: cs.Type == tokens.ExactOutput,
			Recipient:        recipient,
			Message:          message,
			CrossSwap:        cs,
		})
		if err != nil {
			return nil, nil, err
		}
		if err = tokens.AssertMinAmount("bridge output below requested output", gross, bridgeQuote.OutputAmount); err != nil {
			return nil, nil, err
		}
		return bridgeQuote, appFee, nil
	}

	if exactInput == nil {
		exactInput = cs.Amount
	}
	message, err := buildMessage(cs.AppFee)
	if err != nil {
		return nil, nil, err
	}
	bridgeQuote, err := p.strategy.GetQuoteForExactInput(ctx, &tokens.ExactInputQuoteParams{
		InputToken:       bridgeInput,
		OutputToken:      cs.OutputToken,
		ExactInputAmount: exactInput,
		Recipient:        recipient,
		Message:          message,
		CrossSwap:        cs,
	})
	if err != nil {
		return nil, nil, err
	}
	appFee := p.chargeAppFee(bridgeQuote.OutputAmount)
	if !appFee.IsZero() {
		message, err = buildMessage(appFee)
		if err != nil {
			return nil, nil, err
		}
		bridgeQuote = bridgeQuote.WithMessage(message)
	}
	return bridgeQuote, appFee, nil
}

// quoteB2A bridge then swap on destination
func (p *pipeline) quoteB2A(ctx context.Context) (*tokens.CrossSwapQuotes, error) {
	cs := p.crossSwap
	bridgeOutput, err := p.bridgeOutputToken()
	if err != nil {
		return nil, err
	}
	var (
		bridgeQuote *tokens.BridgeQuote
		destLeg     *swapLeg
		appFee      *tokens.AppFee
	)
	if cs.IsOutputDirected() {
		bridgeQuote, destLeg, appFee, err = p.bridgeAndSwapForOutput(ctx, cs.InputToken, bridgeOutput)
	} else {
		bridgeQuote, destLeg, appFee, err = p.bridgeAndSwapExactInput(ctx, cs.InputToken, bridgeOutput, cs.Amount)
	}
	if err != nil {
		return nil, err
	}
	return p.newQuotes(bridgeQuote, nil, destLeg, appFee)
}

// bridgeAndSwapExactInput bridge an exact amount and swap all of it on destination.
// The bridge is quoted with an indicative swap message, the real swap is fetched on the bridge output.
func (p *pipeline) bridgeAndSwapExactInput(ctx context.Context, bridgeInput, bridgeOutput tokens.Token, amount *big.Int) (*tokens.BridgeQuote, *swapLeg, *tokens.AppFee, error) {
	cs := p.crossSwap
	handler, err := p.multicallHandler(cs.OutputToken.ChainID)
	if err != nil {
		return nil, nil, nil, err
	}
	placeholder := tokens.ConvertTokenValue(amount, bridgeInput.Decimals, bridgeOutput.Decimals)
	indicative, err := p.fetchSwap(ctx, p.destinationSwap(bridgeOutput, handler, placeholder, tokens.ExactInput, true))
	if err != nil {
		return nil, nil, nil, err
	}
	message, err := p.destinationMessage(handler, bridgeOutput, indicative, cs.AppFee)
	if err != nil {
		return nil, nil, nil, err
	}
	bridgeQuote, err := p.strategy.GetQuoteForExactInput(ctx, &tokens.ExactInputQuoteParams{
		InputToken:       bridgeInput,
		OutputToken:      bridgeOutput,
		ExactInputAmount: amount,
		Recipient:        handler,
		Message:          message,
		CrossSwap:        cs,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	destLeg, err := p.fetchSwap(ctx, p.destinationSwap(bridgeOutput, handler, bridgeMinOutput(bridgeQuote), tokens.ExactInput, false))
	if err != nil {
		return nil, nil, nil, err
	}
	if err = assertBridgeCovers(bridgeQuote, destLeg); err != nil {
		return nil, nil, nil, err
	}
	appFee := p.chargeAppFee(destLeg.quote.MinAmountOut)
	message, err = p.destinationMessage(handler, bridgeOutput, destLeg, appFee)
	if err != nil {
		return nil, nil, nil, err
	}
	return bridgeQuote.WithMessage(message), destLeg, appFee, nil
}

// bridgeAndSwapForOutput bridge enough to deliver the requested output after the destination swap.
// The real swap and the bridge quote are fetched concurrently off an indicative swap.
func (p *pipeline) bridgeAndSwapForOutput(ctx context.Context, bridgeInput, bridgeOutput tokens.Token) (*tokens.BridgeQuote, *swapLeg, *tokens.AppFee, error) {
	cs := p.crossSwap
	handler, err := p.multicallHandler(cs.OutputToken.ChainID)
	if err != nil {
		return nil, nil, nil, err
	}
	gross, appFee := p.grossOutput()
	indicative, err := p.fetchSwap(ctx, p.destinationSwap(bridgeOutput, handler, gross, cs.Type, true))
	if err != nil {
		return nil, nil, nil, err
	}
	message, err := p.destinationMessage(handler, bridgeOutput, indicative, appFee)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		destLeg     *swapLeg
		bridgeQuote *tokens.BridgeQuote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (errf error) {
		destLeg, errf = p.fetchSwap(gctx, p.destinationSwap(bridgeOutput, handler, gross, cs.Type, false))
		return errf
	})
	g.Go(func() (errf error) {
		bridgeQuote, errf = p.strategy.GetQuoteForOutput(gctx, &tokens.OutputQuoteParams{
			InputToken:      bridgeInput,
			OutputToken:     bridgeOutput,
			MinOutputAmount: requiredInput(indicative.quote),
			Recipient:       handler,
			Message:         message,
			CrossSwap:       cs,
		})
		return errf
	})
	if err = g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	if err = tokens.AssertMinAmount("destination swap output below requested output", gross, destLeg.quote.MinAmountOut); err != nil {
		return nil, nil, nil, err
	}
	if err = assertBridgeCovers(bridgeQuote, destLeg); err != nil {
		return nil, nil, nil, err
	}
	message, err = p.destinationMessage(handler, bridgeOutput, destLeg, appFee)
	if err != nil {
		return nil, nil, nil, err
	}
	return bridgeQuote.WithMessage(message), destLeg, appFee, nil
}

// quoteA2B swap on origin then bridge
func (p *pipeline) quoteA2B(ctx context.Context) (*tokens.CrossSwapQuotes, error) {
	cs := p.crossSwap
	bridgeInput, err := p.bridgeInputToken()
	if err != nil {
		return nil, err
	}
	recipient, err := p.strategy.GetBridgeQuoteRecipient(cs, true)
	if err != nil {
		return nil, err
	}

	if cs.IsOutputDirected() {
		bridgeQuote, appFee, errf := p.bridgeToOutput(ctx, bridgeInput, recipient, nil, func(appFee *tokens.AppFee) ([]byte, error) {
			return p.strategy.GetBridgeQuoteMessage(cs, appFee, nil)
		})
		if errf != nil {
			return nil, errf
		}
		originLeg, errf := p.originSwapForBridgeInput(ctx, bridgeInput, bridgeQuote.InputAmount)
		if errf != nil {
			return nil, errf
		}
		return p.newQuotes(bridgeQuote, originLeg, nil, appFee)
	}

	originLeg, err := p.fetchSwap(ctx, p.originSwap(bridgeInput, cs.Amount, tokens.ExactInput, false))
	if err != nil {
		return nil, err
	}
	bridgeQuote, appFee, err := p.bridgeToOutput(ctx, bridgeInput, recipient, originLeg.quote.MinAmountOut, func(appFee *tokens.AppFee) ([]byte, error) {
		return p.strategy.GetBridgeQuoteMessage(cs, appFee, originLeg.quote)
	})
	if err != nil {
		return nil, err
	}
	return p.newQuotes(bridgeQuote, originLeg, nil, appFee)
}

// originSwapForBridgeInput origin swap delivering at least the bridge input.
// An indicative exact output quote sizes an exact input swap with a safety markup.
func (p *pipeline) originSwapForBridgeInput(ctx context.Context, bridgeInput tokens.Token, bridgeAmount *big.Int) (*swapLeg, error) {
	indicative, err := p.fetchSwap(ctx, p.originSwap(bridgeInput, bridgeAmount, tokens.ExactOutput, true))
	if err != nil {
		return nil, err
	}
	amountIn := tokens.AddMarkup(expectedInput(indicative.quote), p.originSwapMarkup())
	originLeg, err := p.fetchSwap(ctx, p.originSwap(bridgeInput, amountIn, tokens.ExactInput, false))
	if err != nil {
		return nil, err
	}
	if err = tokens.AssertMinAmount("origin swap output below bridge input", bridgeAmount, originLeg.quote.MinAmountOut); err != nil {
		return nil, err
	}
	return originLeg, nil
}
