package canonical

import "testing"

func TestCanonicalize_StripsTrackingParams(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "utm params",
			in:   "https://shop.example.com/item/42?utm_source=news&utm_medium=email&utm_campaign=sale",
			want: "https://shop.example.com/item/42",
		},
		{
			name: "click identifiers",
			in:   "https://shop.example.com/item/42?fbclid=abc123&gclid=def456",
			want: "https://shop.example.com/item/42",
		},
		{
			name: "marketplace session params",
			in:   "https://www.amazon.in/dp/B0ABCD?ref=sr_1_3&qid=1700000000&sprefix=head%2Caps%2C100&sr=8-3",
			want: "https://www.amazon.in/dp/B0ABCD",
		},
		{
			name: "navigation state",
			in:   "https://shop.example.com/item/42?page=3&sort=price_asc&filter=instock",
			want: "https://shop.example.com/item/42",
		},
		{
			name: "non-tracking params survive",
			in:   "https://shop.example.com/item?sku=AB-99&utm_source=x",
			want: "https://shop.example.com/item?sku=AB-99",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Canonicalize(tc.in)
			if got != tc.want {
				t.Fatalf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCanonicalize_URLsDifferingOnlyInTrackingParamsCollapse(t *testing.T) {
	variants := []string{
		"https://shop.example.com/item/42",
		"https://shop.example.com/item/42?utm_source=news",
		"https://shop.example.com/item/42?gclid=x&ref=homepage",
		"https://shop.example.com/item/42?page=2&sort=newest&utm_term=deal",
	}

	want := Canonicalize(variants[0])
	for _, v := range variants[1:] {
		if got := Canonicalize(v); got != want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://shop.example.com/item/42?utm_source=news&sku=AB-99",
		"https://shop.example.com/item/42?",
		"https://shop.example.com/item/42?b=2&a=1",
		"not a url at all",
	}

	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		if once != twice {
			t.Fatalf("Canonicalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCanonicalize_EmptyQueryDropsQuestionMark(t *testing.T) {
	got := Canonicalize("https://shop.example.com/item/42?utm_source=news")
	if got != "https://shop.example.com/item/42" {
		t.Fatalf("expected trailing ? to be dropped, got %q", got)
	}

	got = Canonicalize("https://shop.example.com/item/42?")
	if got != "https://shop.example.com/item/42" {
		t.Fatalf("expected bare ? to be dropped, got %q", got)
	}
}

func TestCanonicalize_MalformedURLReturnedUnchanged(t *testing.T) {
	inputs := []string{
		"://missing-scheme.example.com/item",
		"https://shop.example.com/item/%zz",
		"http://bad host/item?utm_source=x",
	}

	for _, in := range inputs {
		if got := Canonicalize(in); got != in {
			t.Fatalf("Canonicalize(%q) = %q, want input unchanged", in, got)
		}
	}
}
