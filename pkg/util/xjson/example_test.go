package xjson_test

import (
	"fmt"

	"github.com/omeyang/logkit/pkg/util/xjson"
)

func ExampleDisplay() {
	type loginArgs struct {
		User  string `json:"user"`
		Tries int    `json:"tries"`
	}
	fmt.Println(xjson.Display(loginArgs{User: "alice", Tries: 3}))
	// Output:
	// {"user":"alice","tries":3}
}

func ExamplePretty() {
	type User struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	fmt.Println(xjson.Pretty(User{Name: "Alice", Age: 30}))
	// Output:
	// {
	//   "name": "Alice",
	//   "age": 30
	// }
}
