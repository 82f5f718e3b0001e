package exts

import (
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validation = validator.New(validator.WithRequiredStructEnabled())

func BindAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var err error
	if val := reflect.Indirect(reflect.ValueOf(out)); val.Kind() == reflect.Slice {
		err = validation.Var(val.Interface(), "dive")
	} else {
		err = validation.Struct(out)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// QueryPositiveInt reads an integer query parameter, falling back to def when it is absent.
// Values below one are left to the caller to reject.
func QueryPositiveInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if len(raw) == 0 {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be an integer")
	}
	return val, nil
}

func ParamsID(c *fiber.Ctx, key string) (uint, error) {
	val, err := strconv.ParseUint(c.Params(key), 10, 0)
	if err != nil || val == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return uint(val), nil
}
