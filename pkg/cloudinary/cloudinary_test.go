package cloudinary

import "testing"

func TestBuildOptimizedImageURL(t *testing.T) {
	got := BuildOptimizedImageURL("demo", "hubln/announcements/a1", 0)
	want := "https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_1200,c_limit/hubln/announcements/a1"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if got := BuildOptimizedImageURL("demo", "x", ThumbWidth); got != "https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_320,c_limit/x" {
		t.Fatalf("thumb url %s", got)
	}
}
