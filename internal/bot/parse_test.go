package bot

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"noticeboard/internal/filter"
	"noticeboard/internal/model"
)

func TestParseIDArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    string
		wantErr bool
	}{
		{name: "id", args: "mkt_1", want: "mkt_1"},
		{name: "extra words ignored", args: "mkt_1 please", want: "mkt_1"},
		{name: "empty", args: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDArg(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIDArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseIDArg() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFeedArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		wantTab  filter.Tab
		wantPage int
		wantErr  bool
	}{
		{name: "defaults", args: "", wantTab: filter.TabAll, wantPage: 1},
		{name: "tab", args: "Alerts", wantTab: filter.TabAlerts, wantPage: 1},
		{name: "tab and page", args: "events 3", wantTab: filter.TabEvents, wantPage: 3},
		{name: "page only", args: "2", wantTab: filter.TabAll, wantPage: 2},
		{name: "unknown tab", args: "gossip", wantErr: true},
		{name: "bad page", args: "events two", wantErr: true},
		{name: "zero page", args: "0", wantErr: true},
		{name: "too many args", args: "events 2 3", wantErr: true},
		{name: "last page", args: "all 10000", wantTab: filter.TabAll, wantPage: MaxFeedPage},
		{name: "page past cap", args: "all 10001", wantErr: true},
		{name: "huge page", args: "999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab, page, err := ParseFeedArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFeedArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.wantTab, tab); diff != "" {
				t.Errorf("tab mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantPage, page); diff != "" {
				t.Errorf("page mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "whole rands", in: "150", want: 15000},
		{name: "one decimal", in: "150.5", want: 15050},
		{name: "two decimals", in: "99.99", want: 9999},
		{name: "currency prefix and spaces", in: "R1 499,99", want: 149999},
		{name: "free", in: "0", want: 0},
		{name: "empty", in: " ", wantErr: true},
		{name: "negative", in: "-5", wantErr: true},
		{name: "three decimals", in: "1.999", wantErr: true},
		{name: "trailing dot", in: "12.", wantErr: true},
		{name: "words", in: "cheap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePrice() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSellArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    SellArgs
		wantErr bool
	}{
		{
			name: "with category",
			args: "Kids bicycle | 450 | Sport",
			want: SellArgs{Title: "Kids bicycle", PriceMinor: 45000, Category: "Sport"},
		},
		{
			name: "without category",
			args: "Couch|1200.50",
			want: SellArgs{Title: "Couch", PriceMinor: 120050},
		},
		{name: "missing price", args: "Couch", wantErr: true},
		{name: "empty title", args: " | 100", wantErr: true},
		{name: "bad price", args: "Couch | lots", wantErr: true},
		{name: "too many parts", args: "a | 1 | b | c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSellArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSellArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseSellArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePromoteArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    PromoteArgs
		wantErr bool
	}{
		{
			name: "phone with spaces",
			args: "mkt_1 Boost 7 wallet 082 123 4567",
			want: PromoteArgs{
				ListingID: "mkt_1",
				Placement: model.PlacementBoost,
				Days:      7,
				Method:    model.MethodEWallet,
				Phone:     "082 123 4567",
			},
		},
		{
			name: "sponsor by card",
			args: "mkt_2 sponsor 30 card +27821234567",
			want: PromoteArgs{
				ListingID: "mkt_2",
				Placement: model.PlacementSponsor,
				Days:      30,
				Method:    model.MethodCard,
				Phone:     "+27821234567",
			},
		},
		{name: "missing phone", args: "mkt_1 boost 7 eft", wantErr: true},
		{name: "unknown placement", args: "mkt_1 banner 7 eft 0821234567", wantErr: true},
		{name: "bad days", args: "mkt_1 boost week eft 0821234567", wantErr: true},
		{name: "unknown method", args: "mkt_1 boost 7 cash 0821234567", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePromoteArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePromoteArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePromoteArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseUnpromoteArgs(t *testing.T) {
	id, p, err := ParseUnpromoteArgs("mkt_1 SPONSOR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("mkt_1", id); diff != "" {
		t.Errorf("id mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.PlacementSponsor, p); diff != "" {
		t.Errorf("placement mismatch (-want +got):\n%s", diff)
	}

	for _, args := range []string{"", "mkt_1", "mkt_1 boost now", "mkt_1 banner"} {
		if _, _, err := ParseUnpromoteArgs(args); err == nil {
			t.Errorf("ParseUnpromoteArgs(%q) should fail", args)
		}
	}
}

func TestParsePostArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    PostArgs
		wantErr bool
	}{
		{
			name: "title and message",
			args: "Event Street party | Saturday from 2pm",
			want: PostArgs{Category: model.CategoryEvent, Title: "Street party", Message: "Saturday from 2pm"},
		},
		{
			name: "title only",
			args: "lostfound Grey cat near the park",
			want: PostArgs{Category: model.CategoryLostFound, Title: "Grey cat near the park"},
		},
		{name: "category only", args: "alert", wantErr: true},
		{name: "empty title", args: "alert | water off", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePostArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePostArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePostArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
