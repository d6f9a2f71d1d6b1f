package enumform_test

import (
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomasbasham/enumform"
)

// Comparer for MyDate type.
var MyDateComparer = cmp.Comparer(func(x, y MyDate) bool {
	return time.Time(x).Equal(time.Time(y))
})

type Person struct {
	Name     string   `form:"name"`
	Age      int      `form:"age,omitempty"`
	Pronouns []string `form:"pronouns"`
}

type ComplexPerson struct {
	ID        int      `form:"id"`
	Name      string   `form:"name"`
	Age       int      `form:"age,omitempty"`
	Pronouns  []string `form:"pronouns,omitempty"`
	CreatedAt MyDate   `form:"created_at"`
	Private   string   `form:"-"`
	Optional  *string  `form:"optional,omitempty"`
}

type IgnoredFieldsForm struct {
	Public  string `form:"public"`
	Private string `form:"-"`
	Ignored string `form:",ignore"`
	NoTag   string
	Empty   string `form:""`
	Omitted string `form:",omitempty"`
	Complex MyDate `form:"complex,omitempty"`
}

type User struct {
	Name    string  `form:"name"`
	Age     int     `form:"age,omitempty"`
	Address Address `form:"address"`
}

type Address struct {
	Street string `form:"street"`
	City   string `form:"city"`
	State  string `form:"state"`
	Zip    string `form:"zip"`
}

type MyDate time.Time

func (d MyDate) MarshalForm() (string, error) {
	return time.Time(d).Format("2006.01.02"), nil
}

func (d *MyDate) UnmarshalForm(b string) error {
	t, err := time.Parse("2006.01.02", b)
	if err != nil {
		return err
	}
	*d = MyDate(t)
	return nil
}

// Body is a tagged union selected by the "type" field.
type Body interface {
	isBody()
}

type VariantOne struct {
	ContentOne string `form:"content_one,required"`
}

type VariantTwo struct {
	ContentTwo string `form:"content_two,required"`
	Count      int    `form:"count,omitempty"`
}

func (*VariantOne) isBody() {}
func (*VariantTwo) isBody() {}

// Envelope carries a union in a nested field and in a list.
type Envelope struct {
	Sender string `form:"sender,required"`
	Body   Body   `form:"body"`
	Parts  []Body `form:"parts,omitempty"`
}

func newBodyUnion() *enumform.Union[Body] {
	return enumform.NewUnion[Body]("type").
		Variant("variant_one", func() Body { return &VariantOne{} }).
		Variant("variant_two", func() Body { return &VariantTwo{} })
}
