package bot

import (
	"fmt"
	"strconv"
	"strings"

	"noticeboard/internal/filter"
	"noticeboard/internal/model"
)

// ParseIDArg extracts a listing or post ID from a command argument string.
func ParseIDArg(args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", fmt.Errorf("ID is required")
	}
	return fields[0], nil
}

// MaxFeedPage bounds the page number accepted by /feed.
const MaxFeedPage = 10000

// ParseFeedArgs parses "/feed [tab] [page]". Either part may be omitted.
func ParseFeedArgs(args string) (filter.Tab, int, error) {
	fields := strings.Fields(args)
	tab, page := filter.TabAll, 1

	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			page = n
			fields = fields[1:]
		}
	}
	if len(fields) > 0 {
		t, err := filter.ParseTab(fields[0])
		if err != nil {
			return "", 0, err
		}
		tab = t
		fields = fields[1:]
	}
	if len(fields) > 0 {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return "", 0, fmt.Errorf("invalid page %q", fields[0])
		}
		page = n
		fields = fields[1:]
	}
	if len(fields) > 0 {
		return "", 0, fmt.Errorf("usage: /feed [tab] [page]")
	}
	if page < 1 {
		return "", 0, fmt.Errorf("page must be at least 1")
	}
	if page > MaxFeedPage {
		return "", 0, fmt.Errorf("page must be at most %d", MaxFeedPage)
	}
	return tab, page, nil
}

// ParsePrice converts a price such as "150", "150.5" or "R1 499,99" to
// minor units.
func ParsePrice(s string) (int64, error) {
	clean := strings.NewReplacer(" ", "", ",", ".").Replace(strings.TrimSpace(s))
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "R"), "r")
	if clean == "" {
		return 0, fmt.Errorf("price is required")
	}

	whole, frac, hasFrac := strings.Cut(clean, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
	}
	return units*100 + cents, nil
}

// SellArgs holds the parsed arguments of /sell.
type SellArgs struct {
	Title      string
	PriceMinor int64
	Category   string
}

// ParseSellArgs parses "<title> | <price> | <category>". The category is optional.
func ParseSellArgs(args string) (SellArgs, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return SellArgs{}, fmt.Errorf("usage: /sell <title> | <price> | <category>")
	}
	title := strings.TrimSpace(parts[0])
	if title == "" {
		return SellArgs{}, fmt.Errorf("title cannot be empty")
	}
	price, err := ParsePrice(parts[1])
	if err != nil {
		return SellArgs{}, err
	}
	var category string
	if len(parts) == 3 {
		category = strings.TrimSpace(parts[2])
	}
	return SellArgs{Title: title, PriceMinor: price, Category: category}, nil
}

// ParsePlacement maps user input to a placement.
func ParsePlacement(s string) (model.Placement, error) {
	p := model.Placement(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("placement must be boost or sponsor")
	}
	return p, nil
}

// ParseMethod maps user input to a payment method.
func ParseMethod(s string) (model.PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ewallet", "wallet":
		return model.MethodEWallet, nil
	case "card":
		return model.MethodCard, nil
	case "eft":
		return model.MethodEFT, nil
	}
	return "", fmt.Errorf("payment method must be ewallet, card or eft")
}

// PromoteArgs holds the parsed arguments of /promote.
type PromoteArgs struct {
	ListingID string
	Placement model.Placement
	Days      int
	Method    model.PaymentMethod
	Phone     string
}

// ParsePromoteArgs parses "<id> <boost|sponsor> <days> <method> <phone>".
// The phone number may contain spaces.
func ParsePromoteArgs(args string) (PromoteArgs, error) {
	fields := strings.Fields(args)
	if len(fields) < 5 {
		return PromoteArgs{}, fmt.Errorf("usage: /promote <id> <boost|sponsor> <days> <ewallet|card|eft> <phone>")
	}
	placement, err := ParsePlacement(fields[1])
	if err != nil {
		return PromoteArgs{}, err
	}
	days, err := strconv.Atoi(fields[2])
	if err != nil {
		return PromoteArgs{}, fmt.Errorf("invalid number of days %q", fields[2])
	}
	method, err := ParseMethod(fields[3])
	if err != nil {
		return PromoteArgs{}, err
	}
	return PromoteArgs{
		ListingID: fields[0],
		Placement: placement,
		Days:      days,
		Method:    method,
		Phone:     strings.Join(fields[4:], " "),
	}, nil
}

// ParseUnpromoteArgs parses "<id> <boost|sponsor>".
func ParseUnpromoteArgs(args string) (string, model.Placement, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("usage: /unpromote <id> <boost|sponsor>")
	}
	p, err := ParsePlacement(fields[1])
	if err != nil {
		return "", "", err
	}
	return fields[0], p, nil
}

// PostArgs holds the parsed arguments of /post.
type PostArgs struct {
	Category model.PostCategory
	Title    string
	Message  string
}

// ParsePostArgs parses "<category> <title> | <message>". The message is optional.
func ParsePostArgs(args string) (PostArgs, error) {
	category, rest, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok {
		return PostArgs{}, fmt.Errorf("usage: /post <category> <title> | <message>")
	}
	title, message, _ := strings.Cut(rest, "|")
	title = strings.TrimSpace(title)
	if title == "" {
		return PostArgs{}, fmt.Errorf("title cannot be empty")
	}
	return PostArgs{
		Category: model.PostCategory(strings.ToLower(category)),
		Title:    title,
		Message:  strings.TrimSpace(message),
	}, nil
}
